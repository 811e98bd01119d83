package integration

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mittenshop/fulfillment/internal/application/pipeline"
	"github.com/mittenshop/fulfillment/internal/infrastructure/config"
	"github.com/mittenshop/fulfillment/internal/infrastructure/storage"
	"github.com/mittenshop/fulfillment/internal/interfaces/http/handler"
	"github.com/mittenshop/fulfillment/internal/interfaces/http/router"
	"github.com/mittenshop/fulfillment/tests/testutil"
)

const sampleExport = `Name,Id,Financial Status,Lineitem name,Lineitem quantity,Lineitem price,Lineitem discount,Shipping Name,Shipping Address1,Shipping Address2,Shipping City,Shipping Zip,Shipping Province,Shipping Province Name,Shipping Country,Shipping Phone
#1001,r1,paid,Eczema Mitten - Cotton / Single / (140-150),1,28.90,0,Alice Tan,Block 123 Bishan St 11,#05-67,Singapore,570123,,,SG,91234567
#1002,r2,paid,Eczema Mitten - Tencel / Bundle of 2 / L (170-180),1,79.90,0,Casey Jones,42 Main St,,Portland,97201,OR,Oregon,US,
#1003,r3,paid,Eczema Mitten - Cotton / Single / (100-110),1,24.90,0,Emma Hill,10 High St,,London,SW1A 1AA,,,GB,
#1004,r4,paid,Eczema Mitten - Cotton / Single / (140-150),1,28.90,0,Finn Roy,77 Maple Ave,,Toronto,M5H 2N2,ON,Ontario,CA,
`

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.Env = "development"
	cfg.HTTP.MaxUploadBytes = 10 << 20

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	r, err := router.New(cfg, zap.NewNop())
	require.NoError(t, err)
	r.Register(handler.NewSystemHandler("fulfillment", "test"))
	r.Register(handler.NewConversionHandler(handler.ConversionHandlerConfig{
		Service:       pipeline.NewService(zap.NewNop()),
		Store:         store,
		LabelsEnabled: true,
	}))
	return r.Setup()
}

func TestHealthEndpoint(t *testing.T) {
	engine := newTestEngine(t)

	rec := testutil.Get(t, engine, "/api/v1/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestConversionFlow(t *testing.T) {
	engine := newTestEngine(t)

	rec := testutil.UploadCSV(t, engine, "/api/v1/conversions", "orders.csv", []byte(sampleExport))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created handler.ConversionResponse
	testutil.DecodeData(t, rec, &created)

	assert.Equal(t, 4, created.RowsRead)
	assert.Equal(t, 4, created.Orders)
	assert.Equal(t, 1, created.InternationalLines)
	assert.Equal(t, 1, created.USLines)
	assert.Equal(t, 1, created.DomesticLabels)
	assert.Equal(t, 1, created.Excluded)
	require.NotNil(t, created.Locations)
	assert.Equal(t, 1, created.Locations.LabelsSubmitted)
	assert.Contains(t, created.Report, "GRAND TOTAL")

	t.Run("fetch run summary", func(t *testing.T) {
		rec := testutil.Get(t, engine, "/api/v1/conversions/"+created.RunID)
		require.Equal(t, http.StatusOK, rec.Code)

		var fetched handler.ConversionResponse
		testutil.DecodeData(t, rec, &fetched)
		assert.Equal(t, created.RunID, fetched.RunID)
	})

	t.Run("fetch report", func(t *testing.T) {
		rec := testutil.Get(t, engine, "/api/v1/conversions/"+created.RunID+"/report")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "PRODUCT BREAKDOWN BY DESTINATION:")
	})

	t.Run("download international manifest", func(t *testing.T) {
		rec := testutil.Get(t, engine, "/api/v1/conversions/"+created.RunID+"/manifests/international")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "manifest_international.csv")

		body := rec.Body.String()
		assert.Contains(t, body, "Send to business name line 1")
		assert.Contains(t, body, "Emma Hill")
		assert.NotContains(t, body, "Casey Jones", "US orders stay off the international manifest")
	})

	t.Run("download us manifest", func(t *testing.T) {
		rec := testutil.Get(t, engine, "/api/v1/conversions/"+created.RunID+"/manifests/us")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Casey Jones")
		assert.Contains(t, rec.Body.String(), "6116999530")
	})

	t.Run("download labels", func(t *testing.T) {
		rec := testutil.Get(t, engine, "/api/v1/conversions/"+created.RunID+"/labels")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "To: 1001 Alice Tan")
		assert.Contains(t, rec.Body.String(), "From: Eczema Mitten Private Limited")
	})

	t.Run("unknown region", func(t *testing.T) {
		rec := testutil.Get(t, engine, "/api/v1/conversions/"+created.RunID+"/manifests/mars")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestConversionRejections(t *testing.T) {
	engine := newTestEngine(t)

	t.Run("missing file", func(t *testing.T) {
		rec := testutil.Get(t, engine, "/api/v1/conversions/unknown")
		assert.Equal(t, http.StatusBadRequest, rec.Code, "non-UUID run id")

		body, contentType := testutil.MultipartFile(t, "other", "orders.csv", []byte("x"))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/conversions", body)
		req.Header.Set("Content-Type", contentType)
		rec2 := httptest.NewRecorder()
		engine.ServeHTTP(rec2, req)
		assert.Equal(t, http.StatusBadRequest, rec2.Code)
	})

	t.Run("non-CSV upload", func(t *testing.T) {
		rec := testutil.UploadCSV(t, engine, "/api/v1/conversions", "orders.xlsx", []byte("x"))
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("export missing required columns", func(t *testing.T) {
		rec := testutil.UploadCSV(t, engine, "/api/v1/conversions", "orders.csv",
			[]byte("Name,Financial Status\n#1001,paid\n"))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "missing required columns")
	})

	t.Run("unknown run", func(t *testing.T) {
		rec := testutil.Get(t, engine, "/api/v1/conversions/00000000-0000-0000-0000-000000000000")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
