package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	r, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	r.Phrase("pedal")
	r.Phrase("pedal")
	r.Decode("square", true)
	r.Decode("square", false)
	r.Move("human")
	r.Retry("illegal-move")
	r.Search(300 * time.Millisecond)
	r.Dropped(3)
	r.Dropped(0)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.phrases.WithLabelValues("pedal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.decodes.WithLabelValues("square", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.decodes.WithLabelValues("square", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.moves.WithLabelValues("human")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.retries.WithLabelValues("illegal-move")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.dropped))
	assert.Equal(t, 1, testutil.CollectAndCount(r.search))
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	r.Phrase("pedal")
	r.Decode("castling", true)
	r.Move("engine")
	r.Retry("start-square")
	r.Search(time.Second)
	r.Dropped(1)
}

func TestDoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}

func TestHandler(t *testing.T) {
	r, err := New(nil)
	require.NoError(t, err)
	r.Move("engine")

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `melody_moves_total{actor="engine"} 1`))
}
