package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestWorkflowCountersAreRegistered(t *testing.T) {
	RegistrationsTotal.WithLabelValues("ok").Inc()
	before := testutil.ToFloat64(RegistrationsTotal.WithLabelValues("capacity"))
	RegistrationsTotal.WithLabelValues("capacity").Inc()

	assert.Equal(t, before+1, testutil.ToFloat64(RegistrationsTotal.WithLabelValues("capacity")))

	families, err := Registry.Gather()
	assert.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["alumni_event_registrations_total"])
}
