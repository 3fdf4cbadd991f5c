package domain

import "context"

// UploadKind selects the asset folder an upload lands in.
type UploadKind string

const (
	UploadOriginal UploadKind = "original-photo"
	UploadResult   UploadKind = "result-photo"
	UploadProfile  UploadKind = "profile-photo"
)

// Folder returns the storage folder for the upload kind.
func (k UploadKind) Folder() string {
	switch k {
	case UploadResult:
		return "results"
	case UploadProfile:
		return "profiles"
	default:
		return "originals"
	}
}

// MemberDirectory resolves salon members.
type MemberDirectory interface {
	GetMember(ctx context.Context, id string) (*Member, error)
	ListMembers(ctx context.Context) ([]Member, error)
}

// StyleLister fetches the whole style catalog.
type StyleLister interface {
	ListStyles(ctx context.Context) ([]Style, error)
}

// PhotoFetcher downloads an image by absolute URL.
type PhotoFetcher interface {
	FetchImage(ctx context.Context, url string) (RawBinary, error)
}

// Synthesizer produces a base64 composite from a client photo and a style id.
type Synthesizer interface {
	Synthesize(ctx context.Context, image RawBinary, styleID string) (string, error)
}

// AssetUploader stores an image and returns its server-relative path.
type AssetUploader interface {
	UploadImage(ctx context.Context, kind UploadKind, image RawBinary) (string, error)
}

// HistoryStore persists synthesis history records.
type HistoryStore interface {
	CreateRecord(ctx context.Context, rec NewHistoryRecord) (*HistoryRecord, error)
	ListRecords(ctx context.Context) ([]HistoryRecord, error)
	GetRecord(ctx context.Context, id string) (*HistoryRecord, error)
	DeleteRecord(ctx context.Context, id string) error
}

// MemberRepository is the backend's member storage.
type MemberRepository interface {
	List(ctx context.Context, offset, limit int) ([]Member, error)
	GetByID(ctx context.Context, id string) (*Member, error)
}

// HistoryRepository is the backend's synthesis history storage.
type HistoryRepository interface {
	Create(ctx context.Context, rec NewHistoryRecord) (*HistoryRecord, error)
	List(ctx context.Context, memberID string, offset, limit int) ([]HistoryRecord, error)
	GetByID(ctx context.Context, id string) (*HistoryRecord, error)
	Delete(ctx context.Context, id string) error
}
