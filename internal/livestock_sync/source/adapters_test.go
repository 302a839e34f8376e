package source

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"livestock-sync/internal/livestock_sync/model"
)

func newTestAdapters(t *testing.T, handler http.HandlerFunc) *Adapters {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Adapters{
		Client: NewClient(zap.NewNop(), 2*time.Second),
		Endpoints: Endpoints{
			FarmListURL:   srv.URL + "/farms",
			AnimalListURL: srv.URL + "/animals",
			HistoryURL:    srv.URL + "/trace",
			GradeURL:      srv.URL + "/grade",
		},
		FarmAPIKey: "farm-key",
		ServiceKey: "svc-key",
	}
}

func TestFetchFarms(t *testing.T) {
	a := newTestAdapters(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "farm-key", r.Header.Get("api_key"))
		_, _ = w.Write([]byte(`[{"farm_unique_no":["123-456"],"owner_name":"Kim","phone":["010-1111-2222"]}]`))
	})

	farms, err := a.FetchFarms(context.Background())
	require.NoError(t, err)
	require.Len(t, farms, 1)
	assert.Equal(t, "123456", model.NormalizeFarm(farms[0]).FarmUniqueNo)
}

func TestFetchFarms_ParseFailure(t *testing.T) {
	a := newTestAdapters(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	})

	_, err := a.FetchFarms(context.Background())
	require.Error(t, err)
	assert.Equal(t, FailureParse, KindOf(err))
}

func TestFetchAnimalList(t *testing.T) {
	a := newTestAdapters(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{
			"userId":       "id-1",
			"apiKey":       "key-1",
			"farmUniqueNo": "123456",
			"farmerNm":     "Kim",
			"farmerHtelNo": "01011112222",
		}, body)

		_, _ = w.Write([]byte(`<response><row><animalNo>KR0001</animalNo></row><row><animalNo>KR0002</animalNo></row></response>`))
	})

	farm := model.Farm{FarmUniqueNo: "123456", OwnerName: "Kim", Phone: "01011112222"}
	animals, err := a.FetchAnimalList(context.Background(), farm, model.CredentialPair{ID: "id-1", Key: "key-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"KR0001", "KR0002"}, animals)
}

func TestFetchAnimalList_EmptyAndFailedAreDistinct(t *testing.T) {
	empty := newTestAdapters(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<response><items/></response>`))
	})
	animals, err := empty.FetchAnimalList(context.Background(), model.Farm{}, model.CredentialPair{})
	require.NoError(t, err)
	assert.NotNil(t, animals)
	assert.Empty(t, animals)

	failed := newTestAdapters(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	animals, err = failed.FetchAnimalList(context.Background(), model.Farm{}, model.CredentialPair{})
	require.Error(t, err)
	assert.Nil(t, animals)
	assert.Equal(t, FailureTransient, KindOf(err))

	var f *Failure
	require.True(t, errors.As(err, &f))
	assert.Equal(t, http.StatusServiceUnavailable, f.StatusCode)
	assert.Equal(t, EndpointAnimalList, f.Endpoint)
}

func TestFetchHistoryOption(t *testing.T) {
	a := newTestAdapters(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "svc-key", q.Get("ServiceKey"))
		assert.Equal(t, "KR0001", q.Get("traceNo"))
		if q.Get("optionNo") == "3" {
			_, _ = w.Write([]byte(`<response><body>`))
			return
		}
		_, _ = w.Write([]byte(`<response><body><optionNo>` + q.Get("optionNo") + `</optionNo></body></response>`))
	})

	payload, err := a.FetchHistoryOption(context.Background(), "KR0001", 1)
	require.NoError(t, err)
	assert.Contains(t, payload, "response")

	_, err = a.FetchHistoryOption(context.Background(), "KR0001", 3)
	require.Error(t, err)
	assert.Equal(t, FailureParse, KindOf(err))
}

func TestFetchGrade(t *testing.T) {
	a := newTestAdapters(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/grade", r.URL.Path)
		assert.Equal(t, "KR0009", r.URL.Query().Get("animalNo"))
		_, _ = w.Write([]byte(`<response><gradeNm>1++</gradeNm></response>`))
	})

	payload, err := a.FetchGrade(context.Background(), "KR0009")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"response": map[string]any{"gradeNm": "1++"}}, payload)
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := NewClient(nil, 50*time.Millisecond)
	_, err := c.Do(context.Background(), Request{Endpoint: "slow", URL: srv.URL, Method: MethodGet})
	require.Error(t, err)
	assert.Equal(t, FailureTransient, KindOf(err))
}

func TestClient_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(nil, time.Second).Do(context.Background(), Request{Endpoint: "gone", URL: url})
	require.Error(t, err)
	assert.Equal(t, FailureTransient, KindOf(err))
}

func TestClient_InvalidRequest(t *testing.T) {
	c := NewClient(nil, time.Second)

	_, err := c.Do(context.Background(), Request{Endpoint: "bad", URL: "http://example.com", Method: "PATCH"})
	assert.Equal(t, FailureRequest, KindOf(err))

	_, err = c.Do(context.Background(), Request{Endpoint: "bad", URL: "not a url"})
	assert.Equal(t, FailureRequest, KindOf(err))
}

func TestClient_FormMethodRejected(t *testing.T) {
	_, err := NewClient(nil, time.Second).Do(context.Background(), Request{
		Endpoint: "form", URL: "http://example.com", Method: "POST/FORM", Params: map[string]string{"k": "v"},
	})
	assert.Equal(t, FailureRequest, KindOf(err))
}

func TestClient_HTMLErrorPageSummarized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html><head><title>502 Bad Gateway</title><style>body{color:red}</style></head>
<body><script>var x = 1;</script><h1>서비스 점검 중</h1>
<p>잠시 후   다시 시도해 주세요.</p></body></html>`))
	}))
	defer srv.Close()

	_, err := NewClient(nil, time.Second).Do(context.Background(), Request{Endpoint: "gw", URL: srv.URL})
	require.Error(t, err)
	assert.Equal(t, FailureTransient, KindOf(err))
	assert.Contains(t, err.Error(), "502 Bad Gateway 서비스 점검 중 잠시 후 다시 시도해 주세요.")
	assert.NotContains(t, err.Error(), "color:red")
	assert.NotContains(t, err.Error(), "var x")
}

func TestErrorSummary(t *testing.T) {
	assert.Equal(t, "quota exceeded", errorSummary("text/plain", []byte("  quota exceeded\n")))
	assert.Len(t, []rune(errorSummary("text/plain", []byte(strings.Repeat("가", 1000)))), 256)
	assert.Equal(t, "Not Found", errorSummary("text/html", []byte("<title>Not Found</title>")))
}

func TestKindOf_NonFailure(t *testing.T) {
	assert.Equal(t, FailureKind(""), KindOf(errors.New("plain")))
	assert.Equal(t, FailureKind(""), KindOf(nil))
}
