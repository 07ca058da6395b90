package types

// PastaFile is the optional attachment of a pasta: a file name and its size
// in bytes. Storage encodes an absent attachment as an empty name and a zero
// size, so an attachment is only meaningful when both are set.
type PastaFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Pasta is one shared text or file snippet and its metadata.
type Pasta struct {
	ID             int64      `json:"id"`
	Content        string     `json:"content"`
	Title          *string    `json:"title,omitempty"`
	File           *PastaFile `json:"file,omitempty"`
	Extension      string     `json:"extension"`
	ReadOnly       bool       `json:"read_only"`
	Private        bool       `json:"private"`
	Editable       bool       `json:"editable"`
	EncryptServer  bool       `json:"encrypt_server"`
	EncryptClient  bool       `json:"encrypt_client"`
	EncryptedKey   *string    `json:"encrypted_key,omitempty"`
	Created        int64      `json:"created"`
	Expiration     int64      `json:"expiration"`
	LastRead       int64      `json:"last_read"`
	ReadCount      int64      `json:"read_count"`
	BurnAfterReads int64      `json:"burn_after_reads"`
	PastaType      string     `json:"pasta_type"`
}

// HasFile reports whether the pasta carries an attachment that survives a
// storage round trip: a non-empty name and a nonzero size.
func (p *Pasta) HasFile() bool {
	return p.File != nil && p.File.Name != "" && p.File.Size != 0
}

// TitleOrEmpty returns the title, or "" when the pasta has none.
func (p *Pasta) TitleOrEmpty() string {
	if p.Title == nil {
		return ""
	}
	return *p.Title
}

// StringPtr returns a pointer to s. Convenient for the optional text fields.
func StringPtr(s string) *string {
	return &s
}
