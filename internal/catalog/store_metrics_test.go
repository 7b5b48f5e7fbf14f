package catalog_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MiniCatalog/internal/catalog"
)

func TestInstrumentedStore_RecordsResults(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	s := catalog.NewInstrumentedStore(catalog.NewMemStore(), reg)

	p, err := s.Create(ctx, input("Widget", "1", 1))
	require.NoError(t, err)

	_, _, err = s.Get(ctx, p.ID)
	require.NoError(t, err)
	_, _, err = s.Get(ctx, p.ID+100)
	require.NoError(t, err)
	_, err = s.Delete(ctx, p.ID+100)
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(reg, "catalog_store_operation_duration_seconds")
	require.NoError(t, err)
	// create/ok, get/ok, get/not_found, delete/not_found
	assert.Equal(t, 4, n)
}
