package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAverageQuery(t *testing.T) {
	positive := []string{
		"what is the average temperature",
		"average of all nodes",
		"temperature avg",
		"latest average",
		"today's average",
		"current average",
		"mean for the campus",
	}
	for _, q := range positive {
		assert.True(t, IsAverageQuery(q), "query %q", q)
	}

	negative := []string{
		"",
		"what is the temperature at node 5",
		"is the node active",
	}
	for _, q := range negative {
		assert.False(t, IsAverageQuery(q), "query %q", q)
	}
}

func TestIsStatusQuery(t *testing.T) {
	positive := []string{
		"what is the node status",
		"status",
		"is node 3 active",
		"node health report",
		"working condition of the node",
		"node current state",
		"inactive",
	}
	for _, q := range positive {
		assert.True(t, IsStatusQuery(q), "query %q", q)
	}

	negative := []string{
		"",
		"what is the temperature",
		"pm2.5 for the past week",
	}
	for _, q := range negative {
		assert.False(t, IsStatusQuery(q), "query %q", q)
	}
}
