package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/grigory-zhovtun/seller-apis/internal/domain/integration"
)

// MockObjectPutter is a mock implementation of ObjectPutter
type MockObjectPutter struct {
	mock.Mock
}

func (m *MockObjectPutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func testSummary() *integration.RunSummary {
	s := integration.NewRunSummary(integration.PlatformCodeYandexMarket, time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC))
	s.Fetched = 12
	s.AddTarget("yandex:fbs:1001").Matched = 10
	return s
}

func TestNewReportStore_Validation(t *testing.T) {
	ctx := context.Background()

	_, err := NewReportStore(ctx, Config{AccessKey: "k", SecretKey: "s"})
	assert.ErrorContains(t, err, "bucket is required")

	_, err = NewReportStore(ctx, Config{Bucket: "b", SecretKey: "s"})
	assert.ErrorContains(t, err, "access key is required")

	_, err = NewReportStore(ctx, Config{Bucket: "b", AccessKey: "k"})
	assert.ErrorContains(t, err, "secret key is required")

	store, err := NewReportStore(ctx, Config{Bucket: "b", AccessKey: "k", SecretKey: "s", Endpoint: "minio:9000"})
	require.NoError(t, err)
	assert.Equal(t, "s3", store.Name())
}

func TestReportStore_Key(t *testing.T) {
	store, err := NewReportStore(context.Background(),
		Config{Bucket: "reports", Prefix: "runs/", AccessKey: "k", SecretKey: "s"},
		WithClient(new(MockObjectPutter)),
	)
	require.NoError(t, err)

	s := testSummary()
	assert.Equal(t, "runs/yandex_market/2026/03/01/"+s.RunID.String()+".json", store.Key(s))
}

func TestReportStore_Report(t *testing.T) {
	putter := new(MockObjectPutter)
	store, err := NewReportStore(context.Background(),
		Config{Bucket: "reports", Prefix: "runs/", AccessKey: "k", SecretKey: "s"},
		WithClient(putter), WithLogger(zaptest.NewLogger(t)),
	)
	require.NoError(t, err)
	s := testSummary()

	var uploaded []byte
	putter.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return *in.Bucket == "reports" && *in.Key == store.Key(s) && *in.ContentType == "application/json"
	})).Run(func(args mock.Arguments) {
		in := args.Get(1).(*s3.PutObjectInput)
		uploaded, _ = io.ReadAll(in.Body)
	}).Return(&s3.PutObjectOutput{}, nil).Once()

	require.NoError(t, store.Report(context.Background(), s))
	putter.AssertExpectations(t)

	var decoded integration.RunSummary
	require.NoError(t, json.Unmarshal(uploaded, &decoded))
	assert.Equal(t, s.RunID, decoded.RunID)
	assert.Equal(t, 12, decoded.Fetched)
	require.Len(t, decoded.Targets, 1)
	assert.Equal(t, 10, decoded.Targets[0].Matched)
}

func TestReportStore_ReportError(t *testing.T) {
	putter := new(MockObjectPutter)
	putter.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))
	store, err := NewReportStore(context.Background(),
		Config{Bucket: "reports", AccessKey: "k", SecretKey: "s"},
		WithClient(putter),
	)
	require.NoError(t, err)

	err = store.Report(context.Background(), testSummary())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
	assert.True(t, strings.HasPrefix(err.Error(), "storage: uploading yandex_market/"))
}

func TestReportStore_ReportToS3CompatibleServer(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		path   string
		body   string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		data, _ := io.ReadAll(req.Body)
		mu.Lock()
		method, path, body = req.Method, req.URL.Path, string(data)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store, err := NewReportStore(context.Background(), Config{
		Bucket:       "reports",
		Prefix:       "runs/",
		Endpoint:     server.URL,
		Region:       "us-east-1",
		AccessKey:    "minio",
		SecretKey:    "minio123",
		UsePathStyle: true,
	})
	require.NoError(t, err)

	s := testSummary()
	require.NoError(t, store.Report(context.Background(), s))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/reports/"+store.Key(s), path)
	assert.Contains(t, body, s.RunID.String())
}
