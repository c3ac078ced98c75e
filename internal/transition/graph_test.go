package transition

import (
	"testing"

	"github.com/jonathan/placement-cell/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestGraph_NilAllowsEverything(t *testing.T) {
	var g Graph[types.CompanyStatus]

	for _, from := range types.CompanyStatuses() {
		for _, to := range types.CompanyStatuses() {
			assert.True(t, g.Allows(from, to), "%s -> %s", from, to)
		}
	}
}

func TestGraph_Allows(t *testing.T) {
	g := Graph[types.ApplicationStatus]{
		types.ApplicationApplied:     {types.ApplicationShortlisted, types.ApplicationWithdrawn},
		types.ApplicationShortlisted: {types.ApplicationSelected},
	}

	tests := []struct {
		name     string
		from, to types.ApplicationStatus
		expected bool
	}{
		{"listed edge", types.ApplicationApplied, types.ApplicationShortlisted, true},
		{"second listed edge", types.ApplicationApplied, types.ApplicationWithdrawn, true},
		{"unlisted edge", types.ApplicationApplied, types.ApplicationSelected, false},
		{"self loop not listed", types.ApplicationApplied, types.ApplicationApplied, false},
		{"state with no outgoing edges", types.ApplicationRejected, types.ApplicationApplied, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, g.Allows(tt.from, tt.to))
		})
	}
}
