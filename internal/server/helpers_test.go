package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"shardit/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanizeParam(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"id", "ID"},
		{"itemId", "item ID"},
		{"requestId", "request ID"},
		{"notificationId", "notification ID"},
		{"slug", "slug"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, humanizeParam(tc.in), tc.in)
	}
}

func TestParsePagination(t *testing.T) {
	app := fiber.New()
	var got Pagination
	app.Get("/", func(c *fiber.Ctx) error {
		got = parsePagination(c, 20)
		return c.SendStatus(http.StatusOK)
	})

	cases := []struct {
		query string
		want  Pagination
	}{
		{"", Pagination{Limit: 20, Offset: 0}},
		{"?limit=5&offset=10", Pagination{Limit: 5, Offset: 10}},
		{"?limit=0", Pagination{Limit: 20, Offset: 0}},
		{"?limit=-3&offset=-1", Pagination{Limit: 20, Offset: 0}},
		{"?limit=500", Pagination{Limit: maxPaginationLimit, Offset: 0}},
		{"?limit=abc", Pagination{Limit: 20, Offset: 0}},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/"+tc.query, nil)
		resp, err := app.Test(req)
		require.NoError(t, err, tc.query)
		_ = resp.Body.Close()
		assert.Equal(t, tc.want, got, tc.query)
	}
}

func TestParseID(t *testing.T) {
	s := &Server{}
	app := fiber.New()
	app.Get("/things/:id", func(c *fiber.Ctx) error {
		id, err := s.parseID(c, "id")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	cases := []struct {
		path string
		code int
	}{
		{"/things/7", http.StatusOK},
		{"/things/0", http.StatusBadRequest},
		{"/things/-4", http.StatusBadRequest},
		{"/things/banana", http.StatusBadRequest},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		resp, err := app.Test(req)
		require.NoError(t, err, tc.path)
		assert.Equal(t, tc.code, resp.StatusCode, tc.path)
		_ = resp.Body.Close()
	}
}

func TestStatusFilter(t *testing.T) {
	app := fiber.New()
	var got *models.RequestStatus
	var gotErr error
	app.Get("/", func(c *fiber.Ctx) error {
		got, gotErr = statusFilter(c)
		if gotErr != nil {
			return nil
		}
		return c.SendStatus(http.StatusOK)
	})

	run := func(query string) int {
		req := httptest.NewRequest(http.MethodGet, "/"+query, nil)
		resp, err := app.Test(req)
		require.NoError(t, err, query)
		_ = resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, run(""))
	assert.Nil(t, got)

	assert.Equal(t, http.StatusOK, run("?status=PENDING"))
	require.NotNil(t, got)
	assert.Equal(t, models.RequestStatusPending, *got)

	// lowercase accepted
	assert.Equal(t, http.StatusOK, run("?status=accepted"))
	require.NotNil(t, got)
	assert.Equal(t, models.RequestStatusAccepted, *got)

	// legacy alias maps to ACCEPTED
	assert.Equal(t, http.StatusOK, run("?status=APPROVED"))
	require.NotNil(t, got)
	assert.Equal(t, models.RequestStatusAccepted, *got)

	assert.Equal(t, http.StatusBadRequest, run("?status=SHIPPED"))
	assert.ErrorIs(t, gotErr, errResponseWritten)
}
