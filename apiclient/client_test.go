package apiclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type person struct {
	ID       int    `json:"idPersona"`
	Document string `json:"documento"`
}

func TestClient_AttachesBearerTokenFromContext(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL)
	ctx := WithToken(context.Background(), "Bearer abc123")
	require.NoError(t, c.Delete(ctx, "/Persona/1"))
	assert.Equal(t, "Bearer abc123", gotAuth)

	require.NoError(t, c.Delete(context.Background(), "/Persona/1"))
	assert.Empty(t, gotAuth)
}

func TestClient_NormalizesMixedCasing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"IdPersona":1,"Documento":"111"},{"idPersona":2,"documento":"222"}]`)
	}))
	defer srv.Close()

	var people []person
	require.NoError(t, New(srv.URL).Get(context.Background(), "/Persona", &people))
	require.Len(t, people, 2)
	assert.Equal(t, person{ID: 1, Document: "111"}, people[0])
	assert.Equal(t, person{ID: 2, Document: "222"}, people[1])
}

func TestClient_IDKeyAliasesGenericID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"Id":7,"Documento":"777"}`)
	}))
	defer srv.Close()

	var p person
	require.NoError(t, New(srv.URL).Get(context.Background(), "/Persona/7", &p, IDKey("idPersona")))
	assert.Equal(t, 7, p.ID)
}

func TestClient_EmptyBodyIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := person{ID: 9}
	require.NoError(t, New(srv.URL).Put(context.Background(), "/Persona/9", p, &p))
	assert.Equal(t, 9, p.ID)
}

func TestClient_NonSuccessReturnsRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, "La persona ya existe")
	}))
	defer srv.Close()

	err := New(srv.URL).Post(context.Background(), "/Persona", person{Document: "1"}, nil)
	require.Error(t, err)
	assert.Equal(t, "La persona ya existe", err.Error())
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
	assert.True(t, IsDuplicate(err))
	assert.False(t, IsNotFound(err))
}

func TestClient_StatusTextWhenBodyEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	err := New(srv.URL).Get(context.Background(), "/Persona/documento/999", &person{}, Silent())
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, "Not Found", err.Error())
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := New(url).Get(context.Background(), "/Club", &[]Record{})
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.Transport())
}

func TestClient_UploadSendsMultipart(t *testing.T) {
	var fields map[string]string
	var fileContent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		fields = map[string]string{
			"PersonaId":     r.FormValue("PersonaId"),
			"TipoDocumento": r.FormValue("TipoDocumento"),
		}
		f, _, err := r.FormFile("File")
		require.NoError(t, err)
		b, _ := io.ReadAll(f)
		fileContent = string(b)
		_, _ = io.WriteString(w, `{"IdDocumentacion":3}`)
	}))
	defer srv.Close()

	var out Record
	err := New(srv.URL).Upload(context.Background(), "/Documentacion/upload", UploadForm{
		Fields:   map[string]string{"PersonaId": "5", "TipoDocumento": "3"},
		FileName: "apto.pdf",
		File:     strings.NewReader("pdf-bytes"),
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "5", fields["PersonaId"])
	assert.Equal(t, "3", fields["TipoDocumento"])
	assert.Equal(t, "pdf-bytes", fileContent)
	id, ok := out.ID("documentacion")
	assert.True(t, ok)
	assert.Equal(t, 3, id)
}

func TestIsDuplicate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"spanish marker", &APIError{StatusCode: 400, Body: "El club ya existe"}, true},
		{"english marker", &APIError{StatusCode: 400, Body: "Duplicate entry for key"}, true},
		{"other 400", &APIError{StatusCode: 400, Body: "Campo requerido"}, false},
		{"marker on 500", &APIError{StatusCode: 500, Body: "Duplicate"}, false},
		{"not an api error", io.EOF, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDuplicate(tt.err))
		})
	}
}
