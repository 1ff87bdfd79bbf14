package promotion

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgerrors "github.com/adityarahmanda/kopitera-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailablePromotionsScopesByTotal(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/promotions", r.URL.Path)
		require.Equal(t, "50000", r.URL.Query().Get("total"))
		fmt.Fprint(w, `[
			{"promotionId":7,"name":"Kopi Pagi","promotionType":"PERCENTAGE","discountValue":10},
			{"promotionId":9,"name":"Habis","promotionType":"FIXED_AMOUNT","discountValue":5000,"maximumUses":3,"currentUses":3}
		]`)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, time.Second)
	require.NoError(t, err)

	promos, err := client.AvailablePromotions(context.Background(), 50000)
	require.NoError(t, err)

	// The exhausted promotion is dropped while decoding.
	require.Len(t, promos, 1)
	assert.Equal(t, int64(7), promos[0].ID)
}

func TestAvailablePromotionsNon2xxIsDependencyError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, time.Second)
	require.NoError(t, err)

	_, err = client.AvailablePromotions(context.Background(), 10000)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeDependency, typed.Code())
}
