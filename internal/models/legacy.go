package models

// LegacyPostRecord is one <post> element of a legacy board export.
// Text fields hold the raw base64 payload as it appeared in the file.
type LegacyPostRecord struct {
	Title     string
	NickName  string
	UserID    string
	RegDate   string
	ReadCount int
	Content   string
	Comments  []LegacyCommentRecord

	// Ordinal is the 1-based position of the post in its file
	Ordinal int
}

// LegacyCommentRecord is one <comment> nested under a legacy post
type LegacyCommentRecord struct {
	NickName string
	UserID   string
	Content  string
	RegDate  string
}
