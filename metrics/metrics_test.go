// Copyright (c) 2026 The batchmint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoopMetrics(t *testing.T) {
	server := httptest.NewServer(HTTPHandler())
	t.Cleanup(server.Close)

	// meters work without a backend, values go nowhere
	Counter("count1").Add(1)
	Gauge("gauge1").Set(42)

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestLazyLoading(t *testing.T) {
	calls := 0
	lazy := LazyLoad(func() int {
		calls++
		return 7
	})
	require.Equal(t, 0, calls)
	require.Equal(t, 7, lazy())
	require.Equal(t, 7, lazy())
	require.Equal(t, 1, calls)
}
