package prompts

const defaultTaxonomy = `Query classification system for the smart city sensor network:

SPECIFIC - The query names one or more concrete sensor nodes or an exact
location (for example "aq-01" or "the air quality sensor near the main gate").
Map the query to exactly those node IDs.

GENERIC - The query asks about a sensor vertical without naming a node
(for example "what is the air quality?"). Map the query to all node IDs of
the matching vertical.

GENERIC WITH PARAMETER INFERENCE - The query names only a physical parameter
(for example "how humid is it?"). Infer the vertical that measures that
parameter, then map to all of its node IDs.

LIVING_LAB - The query asks about the living lab deployment itself (coverage,
purpose, architecture) rather than sensor readings. No node data is needed.
`

const defaultNodeDirectory = `Known sensor nodes, grouped by vertical prefix:

air quality:   aq-01, aq-02, aq-03, aq-04
solar:         sl-01, sl-02
water quality: wq-01, wq-02, wq-03
weather:       wm-01, wm-02
energy:        em-01, em-02
crowd:         cm-01
`

const defaultNamingGuide = `Node ID naming convention: <vertical prefix>-<two digit index>.
Prefixes: aq = air quality, sl = solar, wq = water quality, wm = weather
monitoring, em = energy monitoring, cm = crowd monitoring.
Common parameters per vertical: air quality reports temperature,
relative_humidity, pm25, pm10, aqi, aql and noise; solar reports voltage,
current and power; water quality reports ph, tds and turbidity; weather
reports temperature, relative_humidity, rainfall and wind_speed.
`

const defaultSpecific = `You are a smart city data assistant. The user asked about specific sensor
nodes: {query}

Here is the latest data for the requested nodes:
{data}

Answer using only this data. Name each node you reference and include the
relevant readings with correct units.
`

const defaultGeneric = `You are a smart city data assistant. The user asked a general question about
the sensor network: {query}

Here is the latest data from the relevant nodes:
{data}

Summarize the readings that answer the question, mention notable outliers,
and include correct units.
`

const defaultLivingLab = `You are the assistant for the smart city living lab. The user asked:
{query}

Answer from general knowledge about the living lab deployment: a research
testbed of networked sensor nodes across verticals such as air quality,
solar, water quality, weather, energy and crowd monitoring. Do not invent
sensor readings.
`

const defaultTemporal = `You are a smart city data analyst assistant. The user has asked a question
about historical data. Please analyze the provided temporal data and answer
the user's query: {query}

Here is the historical data for the requested time period ({time_period}):
{data}

Today's latest readings are also included:
{today_data}

Provide a clear, concise answer that MUST include:
1. A summary of the data trends over the requested time period
2. Key insights or anomalies if present
3. STATISTICAL INFORMATION including:
   - Minimum values for each parameter with timestamps when they occurred
   - Maximum values for each parameter with timestamps when they occurred
   - Average values for each parameter over the time period
4. Comparisons between different time points if applicable
5. Comparison with today's latest readings

Your response should be informative and focused on providing statistical
insights from the data.
`
