package skribble

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate_RequiresExactlyOneDocumentSource(t *testing.T) {
	server, _ := apiServer(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("no request expected")
	})
	client := newTestClient(t, server)

	tests := []struct {
		name   string
		params CreateSignatureRequestParams
	}{
		{"none set", CreateSignatureRequestParams{Title: "Contract"}},
		{"content and file URL", CreateSignatureRequestParams{
			Title:   "Contract",
			Content: "cGRm",
			FileURL: "https://example.com/contract.pdf",
		}},
		{"content and document ID", CreateSignatureRequestParams{
			Title:      "Contract",
			Content:    "cGRm",
			DocumentID: "doc-1",
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := client.SignatureRequests().Create(context.Background(), tc.params)

			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestCreate(t *testing.T) {
	var gotBody map[string]any
	server, _ := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/signature-requests", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":             "sr-1",
			"title":          "Contract",
			"status_overall": "OPEN",
		})
	})
	client := newTestClient(t, server)

	disableTAN := true
	created, err := client.SignatureRequests().Create(context.Background(), CreateSignatureRequestParams{
		Title:   "Contract",
		Content: "cGRm",
		Signatures: []Signature{
			{AccountEmail: "signer@example.com"},
		},
		SigningSequence: []string{"signer@example.com"},
		DisableTAN:      &disableTAN,
	})

	require.NoError(t, err)
	assert.Equal(t, "sr-1", created.ID)
	assert.Equal(t, "OPEN", created.StatusOverall)

	assert.Equal(t, "Contract", gotBody["title"])
	assert.Equal(t, "cGRm", gotBody["content"])
	assert.Equal(t, []any{"signer@example.com"}, gotBody["signing_sequence"])
	assert.Equal(t, true, gotBody["disable_tan"])
	assert.NotContains(t, gotBody, "file_url")
	assert.NotContains(t, gotBody, "disable_notifications")
}

func TestCreate_ExtraFieldsMergedIntoBody(t *testing.T) {
	var gotBody map[string]any
	server, _ := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "sr-1"})
	})
	client := newTestClient(t, server)

	_, err := client.SignatureRequests().Create(context.Background(), CreateSignatureRequestParams{
		Title:   "Contract",
		Content: "cGRm",
		Extra: map[string]any{
			"quality": "AES",
			"title":   "Overridden",
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "AES", gotBody["quality"])
	assert.Equal(t, "Overridden", gotBody["title"], "Extra overrides struct fields on collision")
}

func TestList(t *testing.T) {
	var gotQuery string
	server, _ := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/signature-requests", r.URL.Path)
		gotQuery = r.URL.RawQuery

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]string{
			{"id": "sr-1"},
			{"id": "sr-2"},
		})
	})
	client := newTestClient(t, server)

	pageSize := 50
	requests, err := client.SignatureRequests().List(context.Background(), ListSignatureRequestsParams{
		AccountEmail:  "owner@example.com",
		StatusOverall: "OPEN",
		PageSize:      &pageSize,
	})

	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, "sr-1", requests[0].ID)
	assert.Equal(t, "account_email=owner%40example.com&page_size=50&status_overall=OPEN", gotQuery)
}

func TestGet_EscapesID(t *testing.T) {
	var gotPath string
	server, _ := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "sr/1"})
	})
	client := newTestClient(t, server)

	request, err := client.SignatureRequests().Get(context.Background(), "sr/1")

	require.NoError(t, err)
	assert.Equal(t, "sr/1", request.ID)
	assert.Equal(t, "/signature-requests/sr%2F1", gotPath)
}

func TestGet_NotFound(t *testing.T) {
	server, _ := apiServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "signature request not found"})
	})
	client := newTestClient(t, server)

	_, err := client.SignatureRequests().Get(context.Background(), "missing")

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Equal(t, "signature request not found", httpErr.Message)
}

func TestGetBulk(t *testing.T) {
	var gotIDs []string
	server, _ := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/signature-requests/bulk", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotIDs))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]string{{"id": "sr-1"}, {"id": "sr-2"}})
	})
	client := newTestClient(t, server)

	requests, err := client.SignatureRequests().GetBulk(context.Background(), []string{"sr-1", "sr-2"})

	require.NoError(t, err)
	assert.Len(t, requests, 2)
	assert.Equal(t, []string{"sr-1", "sr-2"}, gotIDs)
}

func TestAddSigner(t *testing.T) {
	var gotBody map[string]any
	server, _ := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/signature-requests/sr-1/signatures", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "sr-1"})
	})
	client := newTestClient(t, server)

	request, err := client.SignatureRequests().AddSigner(context.Background(), "sr-1", AddSignerParams{
		AccountEmail: "new-signer@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "sr-1", request.ID)
	assert.Equal(t, "new-signer@example.com", gotBody["account_email"])
}

func TestAddSigner_RequiresIdentity(t *testing.T) {
	server, _ := apiServer(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("no request expected")
	})
	client := newTestClient(t, server)

	_, err := client.SignatureRequests().AddSigner(context.Background(), "sr-1", AddSignerParams{})

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestRemoveSigner(t *testing.T) {
	var gotPath, gotMethod string
	server, _ := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})
	client := newTestClient(t, server)

	err := client.SignatureRequests().RemoveSigner(context.Background(), "sr-1", "sig-9")

	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/signature-requests/sr-1/signatures/sig-9", gotPath)
}

func TestAddAttachment(t *testing.T) {
	var gotBody map[string]string
	server, _ := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/signature-requests/sr-1/attachments", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"attachment_id": "att-1",
			"filename":      "terms.pdf",
		})
	})
	client := newTestClient(t, server)

	attachment, err := client.SignatureRequests().AddAttachment(context.Background(), "sr-1", AddAttachmentParams{
		Filename:    "terms.pdf",
		ContentType: "application/pdf",
		Content:     "cGRm",
	})

	require.NoError(t, err)
	assert.Equal(t, "att-1", attachment.AttachmentID)
	assert.Equal(t, "terms.pdf", gotBody["filename"])
	assert.Equal(t, "application/pdf", gotBody["content_type"])
}

func TestRemoveAttachment(t *testing.T) {
	var gotPath string
	server, _ := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})
	client := newTestClient(t, server)

	err := client.SignatureRequests().RemoveAttachment(context.Background(), "sr-1", "att-1")

	require.NoError(t, err)
	assert.Equal(t, "/signature-requests/sr-1/attachments/att-1", gotPath)
}

func TestDelete(t *testing.T) {
	var gotMethod, gotPath string
	server, _ := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})
	client := newTestClient(t, server)

	err := client.SignatureRequests().Delete(context.Background(), "sr-1")

	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/signature-requests/sr-1", gotPath)
}

func TestWithdraw(t *testing.T) {
	var gotBody map[string]string
	server, _ := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/signature-requests/sr-1/withdraw", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id":             "sr-1",
			"status_overall": "WITHDRAWN",
		})
	})
	client := newTestClient(t, server)

	request, err := client.SignatureRequests().Withdraw(context.Background(), "sr-1", "superseded by v2")

	require.NoError(t, err)
	assert.Equal(t, "WITHDRAWN", request.StatusOverall)
	assert.Equal(t, map[string]string{"message": "superseded by v2"}, gotBody)
}

func TestWithdraw_WithoutMessageSendsNoBody(t *testing.T) {
	var gotLength int64
	server, _ := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotLength = r.ContentLength
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "sr-1"})
	})
	client := newTestClient(t, server)

	_, err := client.SignatureRequests().Withdraw(context.Background(), "sr-1", "")

	require.NoError(t, err)
	assert.Zero(t, gotLength)
}

func TestRemind(t *testing.T) {
	var gotPath string
	server, _ := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	})
	client := newTestClient(t, server)

	err := client.SignatureRequests().Remind(context.Background(), "sr-1")

	require.NoError(t, err)
	assert.Equal(t, "/signature-requests/sr-1/remind", gotPath)
}

func TestListCallbacks(t *testing.T) {
	server, _ := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/signature-requests/sr-1/callbacks", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]string{
			{"url": "https://example.com/hook", "type": "SIGNATURE_REQUEST_SIGNED"},
		})
	})
	client := newTestClient(t, server)

	callbacks, err := client.SignatureRequests().ListCallbacks(context.Background(), "sr-1")

	require.NoError(t, err)
	require.Len(t, callbacks, 1)
	assert.Equal(t, "https://example.com/hook", callbacks[0].URL)
	assert.Equal(t, "SIGNATURE_REQUEST_SIGNED", callbacks[0].Type)
}
