package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"

	config "github.com/pagecast/pagecast/configs"
	"github.com/pagecast/pagecast/internal/models"
	"github.com/pagecast/pagecast/internal/repository"
	"github.com/pagecast/pagecast/internal/transfer"
)

// MinScheduleLead is the minimum distance between submission and the
// requested publish time.
const MinScheduleLead = 10 * time.Minute

var ErrScheduleTooSoon = fmt.Errorf("scheduled time must be at least %s in the future", MinScheduleLead)

type PostService interface {
	CreatePost(ctx context.Context, userID int64, pc *transfer.PostCreation, files []*multipart.FileHeader) (int64, time.Duration, error)
	List(ctx context.Context, userID int64) ([]*models.Post, error)
	PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error)
	Remove(ctx context.Context, userID, postID int64) error
}

type postService struct {
	cfg      config.Config
	db       *sql.DB
	pr       repository.PostRepository
	pg       repository.PageRepository
	lr       repository.LinkedAccountRepository
	ma       repository.MediaAssetRepository
	pm       repository.PostMediaRepository
	r2       *R2Service
	validate *validator.Validate
}

func NewPostService(
	cfg config.Config,
	db *sql.DB,
	pr repository.PostRepository,
	pg repository.PageRepository,
	lr repository.LinkedAccountRepository,
	ma repository.MediaAssetRepository,
	pm repository.PostMediaRepository,
	r2 *R2Service) PostService {
	return &postService{
		cfg:      cfg,
		db:       db,
		pr:       pr,
		pg:       pg,
		lr:       lr,
		ma:       ma,
		pm:       pm,
		r2:       r2,
		validate: validator.New(),
	}
}

// CreatePost validates and stores a queued post plus its media, returning the
// post id and the delay until its scheduled time. All validation runs before
// any upload or database write.
func (s *postService) CreatePost(ctx context.Context, userID int64, pc *transfer.PostCreation, files []*multipart.FileHeader) (int64, time.Duration, error) {
	if pc == nil {
		err := errors.New("post creation data is nil")
		slog.Error(err.Error())
		return 0, 0, err
	}

	if err := s.validate.Struct(pc); err != nil {
		slog.Info(err.Error())
		return 0, 0, fmt.Errorf("invalid post: %w", err)
	}

	scheduledTime := time.Unix(pc.ScheduledUnix, 0)
	if time.Until(scheduledTime) < MinScheduleLead {
		slog.Info(ErrScheduleTooSoon.Error())
		return 0, 0, ErrScheduleTooSoon
	}

	if pc.Message == "" && pc.Link == "" && len(files) == 0 {
		err := errors.New("post payload is empty")
		slog.Info(err.Error())
		return 0, 0, err
	}

	switch pc.TargetType {
	case models.TargetTypePage:
		_, ok, err := s.pg.GetByExternalID(ctx, userID, pc.TargetID)
		if err != nil {
			return 0, 0, err
		}
		if !ok {
			err = errors.New("page is not connected")
			slog.Info(err.Error())
			return 0, 0, err
		}
	case models.TargetTypeLinkedAccount:
		if len(files) == 0 {
			err := errors.New("linked account posts require media")
			slog.Info(err.Error())
			return 0, 0, err
		}
		_, ok, err := s.lr.GetByExternalID(ctx, userID, pc.TargetID)
		if err != nil {
			return 0, 0, err
		}
		if !ok {
			err = errors.New("linked account is not connected")
			slog.Info(err.Error())
			return 0, 0, err
		}
	}

	postType := models.PostTypeText
	if pc.Link != "" {
		postType = models.PostTypeLink
	}
	if len(files) > 0 {
		mt, err := mediaPostType(files[0])
		if err != nil {
			slog.Info(err.Error())
			return 0, 0, err
		}
		postType = mt
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		}
	}()

	post := models.Post{
		UserID:        userID,
		TargetType:    pc.TargetType,
		TargetID:      pc.TargetID,
		PostType:      postType,
		Message:       pc.Message,
		Link:          pc.Link,
		ScheduledTime: scheduledTime,
		Status:        models.PostStatusQueued,
	}

	postID, err := s.pr.Create(ctx, tx, &post)
	if err != nil {
		return 0, 0, fmt.Errorf("error creating post: %w", err)
	}

	if err = s.processFiles(ctx, tx, userID, postID, files); err != nil {
		return 0, 0, fmt.Errorf("error processing files: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return postID, time.Until(scheduledTime), nil
}

// mediaPostType sniffs the first upload to pick the publish route: mp4/mov go
// out as video posts, everything else as photo posts. The per-file allowlist
// still runs when the files are stored.
func mediaPostType(file *multipart.FileHeader) (string, error) {
	f, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("error opening file: %w", err)
	}
	defer f.Close()

	head := make([]byte, 261)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("error reading file content: %w", err)
	}

	fileType, err := filetype.Match(head[:n])
	if err != nil || fileType == types.Unknown {
		return "", errors.New("unsupported file type")
	}
	if fileType.MIME.Type == "video" {
		return models.PostTypeVideo, nil
	}
	return models.PostTypePhoto, nil
}

func (s *postService) processFiles(ctx context.Context, tx *sql.Tx, userID, postID int64, files []*multipart.FileHeader) error {
	allowedTypes := map[string]struct{}{
		"mp4": {}, "mov": {}, "jpeg": {}, "png": {}, "jpg": {},
	}

	for i, file := range files {
		fileContent, err := file.Open()
		if err != nil {
			return fmt.Errorf("error opening file: %w", err)
		}
		defer fileContent.Close()

		fileBytes, err := io.ReadAll(fileContent)
		if err != nil {
			return fmt.Errorf("error reading file content: %w", err)
		}

		fileType, err := filetype.Match(fileBytes)
		if err != nil || fileType == types.Unknown {
			return fmt.Errorf("unsupported file type: %w", err)
		}
		if _, ok := allowedTypes[fileType.Extension]; !ok {
			return fmt.Errorf("file type %s is not allowed", fileType.Extension)
		}

		assetID, err := s.saveFile(ctx, tx, userID, fileType.MIME.Value, fileBytes)
		if err != nil {
			return fmt.Errorf("error uploading file: %w", err)
		}

		postMedia := models.PostMedia{
			PostID:       postID,
			AssetID:      assetID,
			DisplayOrder: i,
		}
		if err := s.pm.Create(ctx, tx, &postMedia); err != nil {
			return fmt.Errorf("error saving media file: %w", err)
		}
	}
	return nil
}

func (s *postService) saveFile(ctx context.Context, tx *sql.Tx, userID int64, fileType string, file []byte) (int64, error) {
	id, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	err = s.r2.UploadToR2(ctx, id, file, fileType)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	ma := models.MediaAsset{
		UserID:   userID,
		FileName: id,
		FileType: fileType,
		FileSize: int64(len(file)),
		FileURL:  fmt.Sprintf("%s/%s", s.cfg.R2.PublicURL, id),
	}

	assetID, err := s.ma.Create(ctx, tx, &ma)
	if err != nil {
		return 0, err
	}

	return assetID, nil
}

func (s *postService) PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error) {
	var err error

	if userID == 0 {
		err = errors.New("User is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	if postID == 0 {
		err = errors.New("post id is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	isValid, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	if !isValid {
		err = errors.New("Post doesn't exist")
		slog.Info(err.Error())
		return nil, err
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("Error getting post info")
	}

	return post, nil
}

func (s *postService) List(ctx context.Context, userID int64) ([]*models.Post, error) {
	posts, err := s.pr.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Error getting posts")
	}
	return posts, nil
}

func (s *postService) Remove(ctx context.Context, userID, postID int64) error {
	var err error

	if userID == 0 {
		err = errors.New("User is not valid")
		slog.Info(err.Error())
		return err
	}

	if postID == 0 {
		err = errors.New("post_id is not valid")
		slog.Info(err.Error())
		return err
	}

	isValid, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return err
	}

	if !isValid {
		err = errors.New("Post doesn't exist")
		slog.Info(err.Error())
		return err
	}

	err = s.pr.Remove(ctx, postID)
	if err != nil {
		return fmt.Errorf("Error removing post")
	}

	return nil
}
