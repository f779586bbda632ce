package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"domaindesk/internal/dashboard/handler/mocks"
	"domaindesk/internal/dashboard/service"
	dErrors "domaindesk/pkg/domain-errors"
	"domaindesk/pkg/testutil"
)

func newRouter(t *testing.T) (*mocks.MockService, http.Handler) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	r := chi.NewRouter()
	New(svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	return svc, r
}

func TestStats(t *testing.T) {
	t.Run("renders camelCase stats", func(t *testing.T) {
		svc, router := newRouter(t)
		svc.EXPECT().Stats(gomock.Any()).Return(&service.Stats{
			TotalDomains: 2, TotalOffers: 4, ClosedDeals: 1, TotalPotentialValue: 800, ConversionRate: 25,
		}, nil)

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/dashboard"))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t,
			`{"totalDomains":2,"totalOffers":4,"closedDeals":1,"totalPotentialValue":800,"conversionRate":25}`,
			rr.Body.String())
	})

	t.Run("failure is a 500", func(t *testing.T) {
		svc, router := newRouter(t)
		svc.EXPECT().Stats(gomock.Any()).Return(nil,
			dErrors.Wrap(errors.New("timeout"), dErrors.CodeInternal, "Failed to fetch dashboard statistics"))

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/dashboard"))
		testutil.AssertStatusAndMessage(t, rr, http.StatusInternalServerError, "Failed to fetch dashboard statistics")
	})
}
