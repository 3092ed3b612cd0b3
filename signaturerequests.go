package skribble

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

// SignatureRequestsService exposes the /v2/signature-requests
// endpoints.
type SignatureRequestsService struct {
	client *Client
}

// CreateSignatureRequestParams describes a new signature request.
// Exactly one of Content (Base64 PDF), FileURL or DocumentID must be
// set. Fields the service adds over time can be passed through Extra.
type CreateSignatureRequestParams struct {
	Title      string `json:"title"`
	Message    string `json:"message,omitempty"`
	Content    string `json:"content,omitempty"`
	FileURL    string `json:"file_url,omitempty"`
	DocumentID string `json:"document_id,omitempty"`

	Signatures       []Signature       `json:"signatures"`
	VisualSignatures []VisualSignature `json:"visual_signatures,omitempty"`
	Observers        []Observer        `json:"observers,omitempty"`
	Callbacks        []Callback        `json:"callbacks,omitempty"`
	AutoAttachments  []AutoAttachment  `json:"auto_attachments,omitempty"`

	SignatureLevel       string   `json:"signature_level,omitempty"`
	Legislation          string   `json:"legislation,omitempty"`
	OwnerAccountEmail    string   `json:"owner_account_email,omitempty"`
	SigningSequence      []string `json:"signing_sequence,omitempty"`
	DisableTAN           *bool    `json:"disable_tan,omitempty"`
	DisableNotifications *bool    `json:"disable_notifications,omitempty"`

	// Extra fields are merged into the request body as-is, overriding
	// struct fields on key collision.
	Extra map[string]any `json:"-"`
}

// MarshalJSON merges Extra into the encoded body.
func (p CreateSignatureRequestParams) MarshalJSON() ([]byte, error) {
	type plain CreateSignatureRequestParams
	data, err := json.Marshal(plain(p))
	if err != nil || len(p.Extra) == 0 {
		return data, err
	}

	var merged map[string]any
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for k, v := range p.Extra {
		merged[k] = v
	}
	return json.Marshal(merged)
}

func (p CreateSignatureRequestParams) validate() error {
	sources := 0
	if p.Content != "" {
		sources++
	}
	if p.FileURL != "" {
		sources++
	}
	if p.DocumentID != "" {
		sources++
	}
	if sources != 1 {
		return &ConfigurationError{Message: "exactly one of Content, FileURL or DocumentID must be set"}
	}
	return nil
}

// Create creates a signature request. The single method covers the
// document source variants (Base64 content, file URL, existing
// document) and the extended options (observers, callbacks, automatic
// attachments, signing sequence, notification controls).
func (s *SignatureRequestsService) Create(ctx context.Context, params CreateSignatureRequestParams) (*SignatureRequest, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	var created SignatureRequest
	err := s.client.do(ctx, apiCall{
		method: http.MethodPost,
		path:   "/signature-requests",
		body:   params,
		out:    &created,
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ListSignatureRequestsParams filters a signature request listing.
type ListSignatureRequestsParams struct {
	AccountEmail    string
	Search          string
	SignatureStatus string
	StatusOverall   string
	PageNumber      *int
	PageSize        *int

	// Extra query parameters are passed through as-is.
	Extra url.Values
}

func (p ListSignatureRequestsParams) values() url.Values {
	query := url.Values{}
	if p.AccountEmail != "" {
		query.Set("account_email", p.AccountEmail)
	}
	if p.Search != "" {
		query.Set("search", p.Search)
	}
	if p.SignatureStatus != "" {
		query.Set("signature_status", p.SignatureStatus)
	}
	if p.StatusOverall != "" {
		query.Set("status_overall", p.StatusOverall)
	}
	if p.PageNumber != nil {
		query.Set("page_number", strconv.Itoa(*p.PageNumber))
	}
	if p.PageSize != nil {
		query.Set("page_size", strconv.Itoa(*p.PageSize))
	}
	for k, vs := range p.Extra {
		for _, v := range vs {
			query.Add(k, v)
		}
	}
	return query
}

// List returns the signature requests matching the given filters.
func (s *SignatureRequestsService) List(ctx context.Context, params ListSignatureRequestsParams) ([]SignatureRequest, error) {
	var requests []SignatureRequest
	err := s.client.do(ctx, apiCall{
		method: http.MethodGet,
		path:   "/signature-requests",
		query:  params.values(),
		out:    &requests,
	})
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// Get returns a single signature request by ID.
func (s *SignatureRequestsService) Get(ctx context.Context, signatureRequestID string) (*SignatureRequest, error) {
	var request SignatureRequest
	err := s.client.do(ctx, apiCall{
		method: http.MethodGet,
		path:   "/signature-requests/" + url.PathEscape(signatureRequestID),
		out:    &request,
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// GetBulk returns signature requests for the given IDs in one call.
func (s *SignatureRequestsService) GetBulk(ctx context.Context, ids []string) ([]SignatureRequest, error) {
	var requests []SignatureRequest
	err := s.client.do(ctx, apiCall{
		method: http.MethodPost,
		path:   "/signature-requests/bulk",
		body:   ids,
		out:    &requests,
	})
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// AddSignerParams identifies a signer to add to an existing request.
// At least one of AccountEmail or SignerIdentityData must be set.
type AddSignerParams struct {
	AccountEmail       string              `json:"account_email,omitempty"`
	SignerIdentityData *SignerIdentityData `json:"signer_identity_data,omitempty"`
}

// AddSigner adds an individual signer to an existing signature request.
func (s *SignatureRequestsService) AddSigner(ctx context.Context, signatureRequestID string, params AddSignerParams) (*SignatureRequest, error) {
	if params.AccountEmail == "" && params.SignerIdentityData == nil {
		return nil, &ConfigurationError{Message: "at least one of AccountEmail or SignerIdentityData must be provided"}
	}

	var request SignatureRequest
	err := s.client.do(ctx, apiCall{
		method: http.MethodPost,
		path:   "/signature-requests/" + url.PathEscape(signatureRequestID) + "/signatures",
		body:   params,
		out:    &request,
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// RemoveSigner removes an individual signer by signature ID.
func (s *SignatureRequestsService) RemoveSigner(ctx context.Context, signatureRequestID, signerID string) error {
	return s.client.do(ctx, apiCall{
		method: http.MethodDelete,
		path:   "/signature-requests/" + url.PathEscape(signatureRequestID) + "/signatures/" + url.PathEscape(signerID),
		expect: http.StatusNoContent,
	})
}

// AddAttachmentParams carries an attachment upload.
type AddAttachmentParams struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	// Content is the Base64-encoded file content.
	Content string `json:"content"`
}

// AddAttachment attaches a file to a signature request.
func (s *SignatureRequestsService) AddAttachment(ctx context.Context, signatureRequestID string, params AddAttachmentParams) (*Attachment, error) {
	var attachment Attachment
	err := s.client.do(ctx, apiCall{
		method: http.MethodPost,
		path:   "/signature-requests/" + url.PathEscape(signatureRequestID) + "/attachments",
		body:   params,
		out:    &attachment,
	})
	if err != nil {
		return nil, err
	}
	return &attachment, nil
}

// RemoveAttachment removes an attachment from a signature request.
func (s *SignatureRequestsService) RemoveAttachment(ctx context.Context, signatureRequestID, attachmentID string) error {
	return s.client.do(ctx, apiCall{
		method: http.MethodDelete,
		path:   "/signature-requests/" + url.PathEscape(signatureRequestID) + "/attachments/" + url.PathEscape(attachmentID),
		expect: http.StatusNoContent,
	})
}

// Delete deletes a signature request and its associated document.
func (s *SignatureRequestsService) Delete(ctx context.Context, signatureRequestID string) error {
	return s.client.do(ctx, apiCall{
		method: http.MethodDelete,
		path:   "/signature-requests/" + url.PathEscape(signatureRequestID),
		expect: http.StatusNoContent,
	})
}

// Withdraw withdraws a signature request, optionally supplying a
// message shown to the signers.
func (s *SignatureRequestsService) Withdraw(ctx context.Context, signatureRequestID, message string) (*SignatureRequest, error) {
	var body any
	if message != "" {
		body = map[string]string{"message": message}
	}

	var request SignatureRequest
	err := s.client.do(ctx, apiCall{
		method: http.MethodPost,
		path:   "/signature-requests/" + url.PathEscape(signatureRequestID) + "/withdraw",
		body:   body,
		out:    &request,
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// Remind sends reminder notifications to all open signers.
func (s *SignatureRequestsService) Remind(ctx context.Context, signatureRequestID string) error {
	return s.client.do(ctx, apiCall{
		method: http.MethodPost,
		path:   "/signature-requests/" + url.PathEscape(signatureRequestID) + "/remind",
	})
}

// ListCallbacks returns the callbacks configured for a signature
// request.
func (s *SignatureRequestsService) ListCallbacks(ctx context.Context, signatureRequestID string) ([]Callback, error) {
	var callbacks []Callback
	err := s.client.do(ctx, apiCall{
		method: http.MethodGet,
		path:   "/signature-requests/" + url.PathEscape(signatureRequestID) + "/callbacks",
		out:    &callbacks,
	})
	if err != nil {
		return nil, err
	}
	return callbacks, nil
}
