package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/joho/godotenv"

	"hairfit/internal/adapter/repo"
	"hairfit/internal/domain"
	"hairfit/internal/infra"
	"hairfit/internal/storage"
)

const memberFolder = "members"

func main() {
	var (
		idFlag        string
		nameFlag      string
		phoneFlag     string
		memoFlag      string
		photoFlag     string
		photoFileFlag string
	)

	flag.StringVar(&idFlag, "id", "", "member ID to update (empty creates a new member)")
	flag.StringVar(&nameFlag, "name", "", "member name")
	flag.StringVar(&phoneFlag, "phone", "", "member phone number")
	flag.StringVar(&memoFlag, "memo", "", "free-form memo")
	flag.StringVar(&photoFlag, "photo", "", "existing photo path or URL")
	flag.StringVar(&photoFileFlag, "photo-file", "", "local image to store as the member photo")
	flag.Parse()

	_ = godotenv.Load()

	if strings.TrimSpace(nameFlag) == "" {
		exitWithError(errors.New("-name is required"))
	}
	if photoFlag != "" && photoFileFlag != "" {
		exitWithError(errors.New("use either -photo or -photo-file, not both"))
	}

	cfg, err := infra.LoadConfig()
	if err != nil {
		exitWithError(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "memberctl").Logger()
	members := repo.NewMemberRepository(infra.NewSQLRunner(pool, logger))

	photo := strings.TrimSpace(photoFlag)
	if photoFileFlag != "" {
		photo, err = storePhoto(ctx, cfg, photoFileFlag)
		if err != nil {
			exitWithError(err)
		}
	}

	m := domain.Member{ID: idFlag, Name: nameFlag, Phone: phoneFlag}
	if memoFlag != "" {
		m.Memo = &memoFlag
	}
	if photo != "" {
		m.PhotoPath = &photo
	}
	saved, err := members.Upsert(ctx, m)
	if err != nil {
		exitWithError(err)
	}

	fmt.Printf("Member %s (%s) saved\n", saved.ID, saved.Name)
	if p := saved.Photo(); p != "" {
		fmt.Printf("photo_path=%s\n", p)
	}
}

func storePhoto(ctx context.Context, cfg *infra.Config, file string) (string, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("failed to read photo: %w", err)
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%s is not an image (%s)", file, mt.String())
	}
	img := domain.RawBinary{Data: data, MIMEType: mt.String()}

	var store storage.Store
	if cfg.StorageDriver == "s3" {
		store, err = storage.NewS3Store(ctx, cfg.S3Bucket, cfg.AWSRegion, cfg.S3Prefix)
	} else {
		store, err = storage.NewFileStore(cfg.StoragePath)
	}
	if err != nil {
		return "", fmt.Errorf("failed to open storage: %w", err)
	}
	return store.Write(ctx, storage.NewKey(memberFolder, img.Extension()), img.Data, img.MIME())
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
