package skribble

import "encoding/json"

// SignerIdentityData describes a signer that does not (yet) hold a
// Skribble account.
type SignerIdentityData struct {
	EmailAddress string `json:"email_address,omitempty"`
	MobileNumber string `json:"mobile_number,omitempty"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	Language     string `json:"language,omitempty"`
}

// Signature is a single signature slot on a signature request.
type Signature struct {
	SID                string              `json:"sid,omitempty"`
	AccountEmail       string              `json:"account_email,omitempty"`
	SignerIdentityData *SignerIdentityData `json:"signer_identity_data,omitempty"`
	SequenceNumber     int                 `json:"sequence,omitempty"`
	StatusCode         string              `json:"status_code,omitempty"`
	SignedAt           string              `json:"signed_at,omitempty"`
}

// VisualSignaturePosition places a visual signature on a document page.
type VisualSignaturePosition struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Page   string  `json:"page"`
}

// VisualSignature describes the rendered appearance of a signature.
type VisualSignature struct {
	Position VisualSignaturePosition `json:"position"`
	Image    *VisualSignatureImage   `json:"image,omitempty"`
}

// VisualSignatureImage carries the optional signature image content.
type VisualSignatureImage struct {
	ContentType string `json:"content_type,omitempty"`
	Content     string `json:"content,omitempty"`
}

// Callback registers a notification URL for signature request events.
type Callback struct {
	URL  string `json:"url"`
	Type string `json:"type,omitempty"`
}

// Observer receives read-only updates about a signature request.
type Observer struct {
	AccountEmail string `json:"account_email"`
}

// AutoAttachment is attached to the signed document automatically on
// completion.
type AutoAttachment struct {
	AttachmentID string `json:"attachment_id,omitempty"`
	Filename     string `json:"filename,omitempty"`
	ContentType  string `json:"content_type,omitempty"`
	Content      string `json:"content,omitempty"`
}

// Attachment is a file attached to a signature request.
type Attachment struct {
	AttachmentID string `json:"attachment_id,omitempty"`
	Filename     string `json:"filename,omitempty"`
	ContentType  string `json:"content_type,omitempty"`
}

// SignatureRequest is the service's representation of a signature
// request. Fields the service adds over time are preserved in Raw.
type SignatureRequest struct {
	ID                string       `json:"id,omitempty"`
	Title             string       `json:"title,omitempty"`
	Message           string       `json:"message,omitempty"`
	DocumentID        string       `json:"document_id,omitempty"`
	Legislation       string       `json:"legislation,omitempty"`
	Quality           string       `json:"quality,omitempty"`
	SignatureLevel    string       `json:"signature_level,omitempty"`
	StatusOverall     string       `json:"status_overall,omitempty"`
	SigningURL        string       `json:"signing_url,omitempty"`
	OwnerAccountEmail string       `json:"owner_account_email,omitempty"`
	Signatures        []Signature  `json:"signatures,omitempty"`
	Attachments       []Attachment `json:"attachments,omitempty"`
	CreatedAt         string       `json:"created_at,omitempty"`
	UpdatedAt         string       `json:"updated_at,omitempty"`

	// Raw is the undecoded response body, retained so callers can reach
	// fields this struct does not model.
	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the known fields and retains the raw body.
func (s *SignatureRequest) UnmarshalJSON(data []byte) error {
	type plain SignatureRequest
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = SignatureRequest(p)
	s.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// HealthStatus is the response of the management health endpoint.
type HealthStatus struct {
	Status string `json:"status"`
}

// OK reports whether the service considers itself healthy.
func (h HealthStatus) OK() bool {
	return h.Status == "UP"
}
