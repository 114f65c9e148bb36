package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alimgiray/copyrite/internal/models"
	"github.com/alimgiray/copyrite/internal/repositories"
	"github.com/alimgiray/copyrite/internal/services"
	"github.com/alimgiray/copyrite/pkg/database"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	aliasService := services.NewAliasService(repositories.NewAliasRepository(db))
	return NewRouter(aliasService, services.NewReportService())
}

func doRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var payload bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			payload.WriteString(b)
		default:
			_ = json.NewEncoder(&payload).Encode(b)
		}
	}

	req, _ := http.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateAndListAliases(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/projects/p1/aliases", gin.H{
		"name":  "Jane Doe",
		"mails": []string{"jane@x.com", "j@y.com"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.Alias
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "p1", created.ProjectID)

	w = doRequest(router, http.MethodGet, "/projects/p1/aliases", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listed struct {
		Aliases []models.Alias `json:"aliases"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed.Aliases, 1)
	assert.Equal(t, []string{"jane@x.com", "j@y.com"}, listed.Aliases[0].Mails)

	w = doRequest(router, http.MethodGet, "/projects/other/aliases", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"aliases":[]}`, w.Body.String())
}

func TestCreateAliasValidation(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/projects/p1/aliases", gin.H{"name": "Ghost", "mails": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodPost, "/projects/p1/aliases", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteAlias(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/projects/p1/aliases", gin.H{"mails": []string{"a@x.com"}})
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Alias
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doRequest(router, http.MethodDelete, "/projects/p2/aliases/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, http.MethodDelete, "/projects/p1/aliases/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(router, http.MethodDelete, "/projects/p1/aliases/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResolveContributions(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/projects/p1/aliases", gin.H{
		"name":               "Bob Smith",
		"mails":              []string{"b@x.com"},
		"authoritative_mail": "bob@canon.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(router, http.MethodPost, "/projects/p1/contributions/resolve", gin.H{
		"contributions": []gin.H{
			{"author": "bsmith", "mail": "b@x.com", "revision": "1", "date": "2020-01-01T00:00:00Z"},
			{"author": "alice", "mail": "a@x.com", "revision": "2", "date": "2021-01-01T00:00:00Z"},
			{"author": "bsmith", "mail": "b@x.com", "revision": "1", "date": "2020-01-01T00:00:00Z"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Contributions []models.Contribution   `json:"contributions"`
		Authors       []services.AuthorSummary `json:"authors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Contributions, 3)
	assert.Equal(t, "Bob Smith", resp.Contributions[0].Author)
	assert.Equal(t, "bob@canon.com", resp.Contributions[0].Mail)
	assert.Equal(t, "alice", resp.Contributions[1].Author)
	assert.Equal(t, "Bob Smith", resp.Contributions[2].Author)

	require.Len(t, resp.Authors, 2)
	assert.Equal(t, 2, resp.Authors[0].Commits)
}

func TestHealthAndNotFound(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateAliasRejectsBlankMails(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/projects/p1/aliases", gin.H{"name": "Ghost", "mails": []string{"  "}})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = doRequest(router, http.MethodGet, "/projects/p1/aliases", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"aliases":[]}`, w.Body.String())

	w = doRequest(router, http.MethodPost, "/projects/p1/aliases", gin.H{"mails": []string{" a@x.com ", ""}})
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Alias
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, []string{"a@x.com"}, created.Mails)
}

func TestUpdateAlias(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/projects/p1/aliases", gin.H{"mails": []string{"a@x.com"}})
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Alias
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	path := "/projects/p1/aliases/" + created.ID
	w = doRequest(router, http.MethodPut, path, gin.H{
		"name":               "Alice",
		"mails":              []string{"a@x.com", "alice@y.com"},
		"authoritative_mail": "alice@canon.com",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated models.Alias
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.NotNil(t, updated.Name)
	assert.Equal(t, "Alice", *updated.Name)
	assert.Equal(t, []string{"a@x.com", "alice@y.com"}, updated.Mails)

	w = doRequest(router, http.MethodPut, path, gin.H{"mails": []string{" "}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodPut, "/projects/p2/aliases/"+created.ID, gin.H{"mails": []string{"a@x.com"}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, http.MethodPut, "/projects/p1/aliases/missing", gin.H{"mails": []string{"a@x.com"}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFindAliasByMail(t *testing.T) {
	router := newTestRouter(t)

	for _, body := range []gin.H{
		{"name": "A", "mails": []string{"x@x.com"}},
		{"name": "B", "mails": []string{"x@x.com", "b@x.com"}},
	} {
		w := doRequest(router, http.MethodPost, "/projects/p1/aliases", body)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doRequest(router, http.MethodGet, "/projects/p1/aliases?mail=x@x.com", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var found models.Alias
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &found))
	assert.Equal(t, "A", *found.Name)

	w = doRequest(router, http.MethodGet, "/projects/p1/aliases?mail=b@x.com", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &found))
	assert.Equal(t, "B", *found.Name)

	w = doRequest(router, http.MethodGet, "/projects/p1/aliases?mail=nobody@x.com", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResolveWithoutContributions(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/projects/p1/contributions/resolve", gin.H{"contributions": []gin.H{}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"authors":[],"contributions":[]}`, w.Body.String())
}
