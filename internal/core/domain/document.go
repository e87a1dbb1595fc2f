package domain

import "time"

type DocumentKind string

const (
	KindJobDescription DocumentKind = "job_description"
	KindResume         DocumentKind = "resume"
	KindNetworkProfile DocumentKind = "network_profile"
)

type DocumentOrigin string

const (
	OriginTemporary DocumentOrigin = "temporary"
	OriginProfile   DocumentOrigin = "profile"
)

// DocumentRef points at a stored document. The object store owns the bytes;
// a ref is immutable once built.
type DocumentRef struct {
	Kind    DocumentKind   `json:"kind"`
	Locator string         `json:"locator"`
	Origin  DocumentOrigin `json:"origin"`
}

// ExtractedText is the normalized plain text of one document. It lives only
// for the duration of a single scoring run.
type ExtractedText struct {
	Source    DocumentRef
	Text      string
	CharCount int
}

// Profile is the read model of a stored user profile. Document locators are
// empty when the profile has no document of that kind.
type Profile struct {
	ID                 string    `json:"id"`
	ResumePath         string    `json:"resume_path,omitempty"`
	NetworkProfilePath string    `json:"network_profile_path,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
