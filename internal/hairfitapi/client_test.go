package hairfitapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"hairfit/internal/domain"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Options{BaseURL: srv.URL + "/", Token: "secret", HTTPClient: srv.Client()})
}

func TestListStylesNormalizesGender(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/styles" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("authorization = %q", got)
		}
		_, _ = io.WriteString(w, `{"styles":[{"id":"style_1","image_path":"styles/style_1.jpg","exists":true,"tags":["short"],"gender":"female","category":"cut"},{"id":"style_2","image_path":"styles/style_2.jpg","exists":true,"gender":"unisex"}]}`)
	}))
	styles, err := c.ListStyles(context.Background())
	if err != nil {
		t.Fatalf("ListStyles: %v", err)
	}
	if len(styles) != 2 {
		t.Fatalf("styles = %d", len(styles))
	}
	if styles[0].Gender != domain.GenderFemale || styles[1].Gender != domain.GenderNeutral {
		t.Fatalf("genders = %q, %q", styles[0].Gender, styles[1].Gender)
	}
	if !styles[0].HasTag("short") {
		t.Fatalf("tags not decoded: %+v", styles[0])
	}
}

func TestListMembersPages(t *testing.T) {
	total := memberPageSize + 3
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		var page []domain.Member
		for i := skip; i < total && i < skip+limit; i++ {
			page = append(page, domain.Member{ID: strconv.Itoa(i)})
		}
		if page == nil {
			page = []domain.Member{}
		}
		_ = json.NewEncoder(w).Encode(page)
	}))
	members, err := c.ListMembers(context.Background())
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	if len(members) != total {
		t.Fatalf("members = %d, want %d", len(members), total)
	}
}

func TestListRecordsPages(t *testing.T) {
	total := historyPageSize*2 + 5
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/synthesis-history" {
			t.Errorf("path = %q", r.URL.Path)
		}
		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit <= 0 {
			// backend default page size
			limit = 100
		}
		page := []domain.HistoryRecord{}
		for i := skip; i < total && i < skip+limit; i++ {
			page = append(page, domain.HistoryRecord{ID: strconv.Itoa(i)})
		}
		_ = json.NewEncoder(w).Encode(page)
	}))
	recs, err := c.ListRecords(context.Background())
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(recs) != total {
		t.Fatalf("records = %d, want %d", len(recs), total)
	}
	if recs[0].ID != "0" || recs[total-1].ID != strconv.Itoa(total-1) {
		t.Fatalf("order = %s..%s", recs[0].ID, recs[total-1].ID)
	}
}

func TestGetMemberNotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"not_found","message":"member not found"}`)
	}))
	_, err := c.GetMember(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "not_found" || apiErr.Message != "member not found" {
		t.Fatalf("api error = %+v", apiErr)
	}
}

func TestSynthesizeSendsMultipart(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/synthesize" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			return
		}
		if got := r.FormValue("style_id"); got != "style_1" {
			t.Errorf("style_id = %q", got)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if !bytes.Equal(data, pngBytes) {
			t.Errorf("file bytes mismatch")
		}
		if ct := hdr.Header.Get("Content-Type"); ct != "image/png" {
			t.Errorf("part content type = %q", ct)
		}
		_, _ = io.WriteString(w, `{"result_image":"cmVzdWx0"}`)
	}))
	out, err := c.Synthesize(context.Background(), domain.RawBinary{Data: pngBytes, MIMEType: "image/png"}, "style_1")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if out != "cmVzdWx0" {
		t.Fatalf("result = %q", out)
	}
}

func TestSynthesizeServerError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusBadGateway)
	}))
	_, err := c.Synthesize(context.Background(), domain.RawBinary{Data: pngBytes}, "style_1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadGateway {
		t.Fatalf("err = %v", err)
	}
	if errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("502 must not look like not found")
	}
}

// The request timeout stands in for HTTP_CLIENT_TIMEOUT_SECONDS and the sleep
// for a synthesis that outlasts it but not the session bound.
func TestSynthesizeOutlivesRequestTimeout(t *testing.T) {
	const requestTimeout = 20 * time.Millisecond
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(4 * requestTimeout)
		switch r.URL.Path {
		case "/synthesize":
			_, _ = io.WriteString(w, `{"result_image":"c2xvdw=="}`)
		default:
			_, _ = io.WriteString(w, `{"styles":[]}`)
		}
	}))
	t.Cleanup(srv.Close)
	c := NewClient(Options{BaseURL: srv.URL, RequestTimeout: requestTimeout})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out, err := c.Synthesize(ctx, domain.RawBinary{Data: pngBytes, MIMEType: "image/png"}, "style_1")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if out != "c2xvdw==" {
		t.Fatalf("result = %q", out)
	}

	if _, err := c.ListStyles(context.Background()); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("ListStyles err = %v, want deadline exceeded", err)
	}
}

func TestSynthesizeStopsAtCallerDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})
	c := NewClient(Options{BaseURL: srv.URL, RequestTimeout: time.Minute})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := c.Synthesize(ctx, domain.RawBinary{Data: pngBytes}, "style_1")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestUploadImage(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/upload/result-photo" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = io.WriteString(w, `{"photo_path":"results/abc.png"}`)
	}))
	p, err := c.UploadImage(context.Background(), domain.UploadResult, domain.RawBinary{Data: pngBytes})
	if err != nil {
		t.Fatalf("UploadImage: %v", err)
	}
	if p != "results/abc.png" {
		t.Fatalf("path = %q", p)
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	var created domain.NewHistoryRecord
	mux := http.NewServeMux()
	mux.HandleFunc("/synthesis-history", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			if err := json.NewDecoder(r.Body).Decode(&created); err != nil {
				t.Errorf("decode: %v", err)
			}
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(domain.HistoryRecord{
				ID:                "h1",
				MemberID:          created.MemberID,
				OriginalPhotoPath: created.OriginalPhotoPath,
				ReferenceStyleID:  created.ReferenceStyleID,
				ResultPhotoPath:   created.ResultPhotoPath,
			})
		default:
			_, _ = io.WriteString(w, `[{"id":"h1","original_photo_path":"members/m1.jpg","reference_style_id":"s1","result_photo_path":"results/r.png"}]`)
		}
	})
	mux.HandleFunc("/synthesis-history/h1", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	member := "m1"
	rec, err := c.CreateRecord(ctx, domain.NewHistoryRecord{
		MemberID:          &member,
		OriginalPhotoPath: "members/m1.jpg",
		ReferenceStyleID:  "s1",
		ResultPhotoPath:   "results/r.png",
	})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	if rec.ID != "h1" || created.MemberID == nil || *created.MemberID != "m1" {
		t.Fatalf("record = %+v, sent = %+v", rec, created)
	}
	list, err := c.ListRecords(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListRecords = %v, %v", list, err)
	}
	if err := c.DeleteRecord(ctx, "h1"); err != nil {
		t.Fatalf("DeleteRecord: %v", err)
	}
}

func TestFetchImage(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/images/members/m1.jpg" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(pngBytes)
	}))
	bin, err := c.FetchImage(context.Background(), c.BaseURL()+"/images/members/m1.jpg")
	if err != nil {
		t.Fatalf("FetchImage: %v", err)
	}
	if bin.MIMEType != "image/png" || !bytes.Equal(bin.Data, pngBytes) {
		t.Fatalf("binary = %q (%d bytes)", bin.MIMEType, len(bin.Data))
	}
	if _, err := c.FetchImage(context.Background(), c.BaseURL()+"/images/members/missing.jpg"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
