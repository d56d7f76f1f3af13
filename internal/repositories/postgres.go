package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/reelpoint/backend/internal/accounts"
	"github.com/reelpoint/backend/internal/catalog"
	"github.com/reelpoint/backend/internal/comments"
	"github.com/reelpoint/backend/internal/db"
	"github.com/reelpoint/backend/internal/models"
	"github.com/reelpoint/backend/internal/moderation"
	"github.com/reelpoint/backend/internal/ratings"
)

// PostgresUserRepository provides PostgreSQL-backed persistence for users.
type PostgresUserRepository struct {
	pool db.Pool
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create persists a new user record.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO users (id, email, password_hash, first_name, last_name, roles, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, user.ID, user.Email, user.Password, user.FirstName, user.LastName, roleNames(user.Roles), user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: email already registered", models.ErrConflict)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// FindByEmail fetches a user by their email address.
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, email, password_hash, first_name, last_name, roles, created_at, updated_at
        FROM users
        WHERE email = $1
    `, email)

	return scanUser(row)
}

// FindByID fetches a user by primary key.
func (r *PostgresUserRepository) FindByID(ctx context.Context, userID string) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, email, password_hash, first_name, last_name, roles, created_at, updated_at
        FROM users
        WHERE id = $1
    `, userID)

	return scanUser(row)
}

// UpdateProfile modifies the mutable profile fields of a user record.
func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, user models.User) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users
        SET first_name = $2, last_name = $3, updated_at = $4
        WHERE id = $1
    `, user.ID, user.FirstName, user.LastName, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update user profile: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %s", models.ErrNotFound, user.ID)
	}

	return nil
}

// SetRoles replaces the user's role set.
func (r *PostgresUserRepository) SetRoles(ctx context.Context, userID string, roles []models.Role, updatedAt time.Time) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users
        SET roles = $2, updated_at = $3
        WHERE id = $1
    `, userID, roleNames(roles), updatedAt)
	if err != nil {
		return fmt.Errorf("update user roles: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %s", models.ErrNotFound, userID)
	}

	return nil
}

// Search finds users whose email or name contains the query fragment.
func (r *PostgresUserRepository) Search(ctx context.Context, query string, limit int) ([]models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, email, password_hash, first_name, last_name, roles, created_at, updated_at
        FROM users
        WHERE email ILIKE '%' || $1 || '%'
           OR first_name ILIKE '%' || $1 || '%'
           OR last_name ILIKE '%' || $1 || '%'
        ORDER BY email
        LIMIT $2
    `, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var (
		user  models.User
		roles []string
	)
	if err := row.Scan(&user.ID, &user.Email, &user.Password, &user.FirstName, &user.LastName, &roles, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, fmt.Errorf("%w: user", models.ErrNotFound)
		}
		return models.User{}, fmt.Errorf("scan user: %w", err)
	}
	for _, r := range roles {
		user.Roles = append(user.Roles, models.Role(r))
	}
	return user, nil
}

func roleNames(roles []models.Role) []string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return names
}

// PostgresVideoRepository provides PostgreSQL-backed persistence for catalog
// videos, including the lifecycle transitions the enricher drives.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

const videoColumns = `id, owner_id, title, description, tags, source_id, source_url, status,
       thumbnail_url, views, average_rating, total_ratings, created_at, updated_at, is_deleted, deleted_at`

// Create stores a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, owner_id, title, description, tags, source_id, source_url, status,
                            thumbnail_url, views, created_at, updated_at, is_deleted)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, $10, $11, FALSE)
    `, video.ID, video.OwnerID, video.Title, video.Description, video.Tags, video.SourceID,
		video.SourceURL, video.Status, video.ThumbnailURL, video.CreatedAt, video.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: video %s", models.ErrConflict, video.ID)
		}
		return fmt.Errorf("insert video: %w", err)
	}

	return nil
}

// Get fetches a video by primary key, deleted or not. Visibility rules are the
// caller's concern.
func (r *PostgresVideoRepository) Get(ctx context.Context, videoID string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT `+videoColumns+`
        FROM videos
        WHERE id = $1
    `, videoID)

	return scanVideo(row)
}

// UpdateDetails persists owner-editable fields.
func (r *PostgresVideoRepository) UpdateDetails(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET title = $2, description = $3, tags = $4, updated_at = $5
        WHERE id = $1
    `, video.ID, video.Title, video.Description, video.Tags, video.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update video details: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: video %s", models.ErrNotFound, video.ID)
	}

	return nil
}

// IncrementViews bumps the view counter in a single conditional statement so
// concurrent views never lose updates. Only READY, visible videos count.
func (r *PostgresVideoRepository) IncrementViews(ctx context.Context, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET views = views + 1
        WHERE id = $1 AND status = $2 AND is_deleted = FALSE
    `, videoID, models.VideoStatusReady)
	if err != nil {
		return fmt.Errorf("increment video views: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: video %s", models.ErrNotFound, videoID)
	}

	return nil
}

// MarkProcessing records the start of enrichment. The status guard keeps a
// late worker from dragging a READY or ERROR record backwards.
func (r *PostgresVideoRepository) MarkProcessing(ctx context.Context, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET status = $2, updated_at = $3
        WHERE id = $1 AND status IN ($4, $2)
    `, videoID, models.VideoStatusProcessing, time.Now().UTC(), models.VideoStatusPending)
	if err != nil {
		return fmt.Errorf("update video status processing: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: video %s not pending", models.ErrConflict, videoID)
	}

	return nil
}

// MarkReady stores the fetched metadata and completes enrichment. A caller
// supplied title survives; the pending placeholder is replaced.
func (r *PostgresVideoRepository) MarkReady(ctx context.Context, videoID string, meta catalog.Metadata) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tags := meta.Tags
	if tags == nil {
		tags = []string{}
	}

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET status = $2,
            title = CASE WHEN title = $6 AND $3 <> '' THEN $3 ELSE title END,
            description = CASE WHEN description = '' THEN $4 ELSE description END,
            tags = CASE WHEN cardinality(tags) = 0 THEN $5::TEXT[] ELSE tags END,
            thumbnail_url = $7,
            updated_at = $8
        WHERE id = $1 AND status IN ($9, $10)
    `, videoID, models.VideoStatusReady, meta.Title, meta.Description, tags,
		models.PlaceholderTitle, meta.ThumbnailURL, time.Now().UTC(),
		models.VideoStatusPending, models.VideoStatusProcessing)
	if err != nil {
		return fmt.Errorf("update video status ready: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: video %s not processing", models.ErrConflict, videoID)
	}

	return nil
}

// MarkError records a failed enrichment attempt. The placeholder title is
// replaced with the provided failure title so reads carry an explanation.
func (r *PostgresVideoRepository) MarkError(ctx context.Context, videoID, title string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET status = $2,
            title = CASE WHEN title = $3 THEN $4 ELSE title END,
            updated_at = $5
        WHERE id = $1
    `, videoID, models.VideoStatusError, models.PlaceholderTitle, title, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update video status error: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: video %s", models.ErrNotFound, videoID)
	}

	return nil
}

// SetDeleted toggles soft-deletion. The condition on the current flag makes
// concurrent toggles to the same value visible as zero affected rows.
func (r *PostgresVideoRepository) SetDeleted(ctx context.Context, videoID string, deleted bool, at *time.Time) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	deletedAt := sql.NullTime{}
	if at != nil {
		deletedAt = sql.NullTime{Valid: true, Time: at.UTC()}
	}

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET is_deleted = $2, deleted_at = $3, updated_at = $4
        WHERE id = $1 AND is_deleted <> $2
    `, videoID, deleted, deletedAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update video deletion: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: video %s", models.ErrNotFound, videoID)
	}

	return nil
}

// ListLatest returns READY, visible videos newest-first with the total match
// count.
func (r *PostgresVideoRepository) ListLatest(ctx context.Context, page, pageSize int) ([]models.Video, int, error) {
	return r.listVideos(ctx, `
        SELECT `+videoColumns+`, COUNT(*) OVER () AS total
        FROM videos
        WHERE status = $1 AND is_deleted = FALSE
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `, models.VideoStatusReady, pageSize, (page-1)*pageSize)
}

// ListByTag returns READY, visible videos carrying the tag, newest-first.
func (r *PostgresVideoRepository) ListByTag(ctx context.Context, tag string, page, pageSize int) ([]models.Video, int, error) {
	return r.listVideos(ctx, `
        SELECT `+videoColumns+`, COUNT(*) OVER () AS total
        FROM videos
        WHERE status = $1 AND is_deleted = FALSE AND $4 = ANY(tags)
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `, models.VideoStatusReady, pageSize, (page-1)*pageSize, tag)
}

// ListByUser returns a user's READY, visible videos, newest-first.
func (r *PostgresVideoRepository) ListByUser(ctx context.Context, userID string, page, pageSize int) ([]models.Video, int, error) {
	return r.listVideos(ctx, `
        SELECT `+videoColumns+`, COUNT(*) OVER () AS total
        FROM videos
        WHERE status = $1 AND is_deleted = FALSE AND owner_id = $4
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `, models.VideoStatusReady, pageSize, (page-1)*pageSize, userID)
}

func (r *PostgresVideoRepository) listVideos(ctx context.Context, query string, args ...any) ([]models.Video, int, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	var (
		videos []models.Video
		total  int
	)
	for rows.Next() {
		video, rowTotal, err := scanVideoWithTotal(rows)
		if err != nil {
			return nil, 0, err
		}
		videos = append(videos, video)
		total = rowTotal
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate videos: %w", err)
	}

	return videos, total, nil
}

func scanVideo(row pgx.Row) (models.Video, error) {
	var (
		video         models.Video
		averageRating sql.NullFloat64
		deletedAt     sql.NullTime
	)
	if err := row.Scan(&video.ID, &video.OwnerID, &video.Title, &video.Description, &video.Tags,
		&video.SourceID, &video.SourceURL, &video.Status, &video.ThumbnailURL, &video.ViewCount,
		&averageRating, &video.TotalRatingsCount, &video.CreatedAt, &video.UpdatedAt,
		&video.IsDeleted, &deletedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, fmt.Errorf("%w: video", models.ErrNotFound)
		}
		return models.Video{}, fmt.Errorf("scan video: %w", err)
	}
	applyNullables(&video, averageRating, deletedAt)
	return video, nil
}

func scanVideoWithTotal(row pgx.Row) (models.Video, int, error) {
	var (
		video         models.Video
		averageRating sql.NullFloat64
		deletedAt     sql.NullTime
		total         int
	)
	if err := row.Scan(&video.ID, &video.OwnerID, &video.Title, &video.Description, &video.Tags,
		&video.SourceID, &video.SourceURL, &video.Status, &video.ThumbnailURL, &video.ViewCount,
		&averageRating, &video.TotalRatingsCount, &video.CreatedAt, &video.UpdatedAt,
		&video.IsDeleted, &deletedAt, &total); err != nil {
		return models.Video{}, 0, fmt.Errorf("scan video: %w", err)
	}
	applyNullables(&video, averageRating, deletedAt)
	return video, total, nil
}

func applyNullables(video *models.Video, averageRating sql.NullFloat64, deletedAt sql.NullTime) {
	if averageRating.Valid {
		v := averageRating.Float64
		video.AverageRating = &v
	}
	if deletedAt.Valid {
		t := deletedAt.Time.UTC()
		video.DeletedAt = &t
	}
}

// PostgresRatingRepository provides PostgreSQL-backed persistence for ratings.
type PostgresRatingRepository struct {
	pool db.Pool
}

// NewPostgresRatingRepository constructs a rating repository backed by PostgreSQL.
func NewPostgresRatingRepository(pool db.Pool) *PostgresRatingRepository {
	return &PostgresRatingRepository{pool: pool}
}

// Save upserts the rating and republishes the video's average and count in
// one transaction. The video row is locked before anything else so
// concurrent raters recompute serially: whichever transaction commits last
// has seen every previously committed rating row.
func (r *PostgresRatingRepository) Save(ctx context.Context, rating models.Rating) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin rating transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var lockedID string
	if err := tx.QueryRow(ctx, `
        SELECT id FROM videos WHERE id = $1 FOR UPDATE
    `, rating.VideoID).Scan(&lockedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: video %s", models.ErrNotFound, rating.VideoID)
		}
		return fmt.Errorf("lock video row: %w", err)
	}

	if _, err := tx.Exec(ctx, `
        INSERT INTO ratings (video_id, user_id, value, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (video_id, user_id)
        DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
    `, rating.VideoID, rating.UserID, rating.Value, rating.CreatedAt, rating.UpdatedAt); err != nil {
		return fmt.Errorf("upsert rating: %w", err)
	}

	var (
		count   int
		average float64
	)
	if err := tx.QueryRow(ctx, `
        SELECT COUNT(*), AVG(value)::FLOAT8
        FROM ratings
        WHERE video_id = $1
    `, rating.VideoID).Scan(&count, &average); err != nil {
		return fmt.Errorf("recompute rating aggregate: %w", err)
	}

	if _, err := tx.Exec(ctx, `
        UPDATE videos
        SET average_rating = $2, total_ratings = $3, updated_at = $4
        WHERE id = $1
    `, rating.VideoID, average, count, rating.UpdatedAt); err != nil {
		return fmt.Errorf("publish rating aggregate: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit rating transaction: %w", err)
	}

	return nil
}

// Find fetches the rating one user gave one video.
func (r *PostgresRatingRepository) Find(ctx context.Context, videoID, userID string) (models.Rating, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Rating{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT video_id, user_id, value, created_at, updated_at
        FROM ratings
        WHERE video_id = $1 AND user_id = $2
    `, videoID, userID)

	var rating models.Rating
	if err := row.Scan(&rating.VideoID, &rating.UserID, &rating.Value, &rating.CreatedAt, &rating.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Rating{}, fmt.Errorf("%w: rating", models.ErrNotFound)
		}
		return models.Rating{}, fmt.Errorf("scan rating: %w", err)
	}

	return rating, nil
}

// PostgresCommentRepository provides PostgreSQL-backed persistence for comments.
type PostgresCommentRepository struct {
	pool db.Pool
}

// NewPostgresCommentRepository constructs a comment repository backed by PostgreSQL.
func NewPostgresCommentRepository(pool db.Pool) *PostgresCommentRepository {
	return &PostgresCommentRepository{pool: pool}
}

const commentColumns = `id, video_id, user_id, body, sentiment, created_at, updated_at, is_deleted, deleted_at`

// Create persists a new comment.
func (r *PostgresCommentRepository) Create(ctx context.Context, comment models.Comment) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO comments (id, video_id, user_id, body, sentiment, created_at, updated_at, is_deleted)
        VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE)
    `, comment.ID, comment.VideoID, comment.UserID, comment.Text, comment.Sentiment, comment.CreatedAt, comment.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("%w: video %s", models.ErrNotFound, comment.VideoID)
		}
		return fmt.Errorf("insert comment: %w", err)
	}

	return nil
}

// Get fetches a comment by primary key, deleted or not.
func (r *PostgresCommentRepository) Get(ctx context.Context, commentID string) (models.Comment, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Comment{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT `+commentColumns+`
        FROM comments
        WHERE id = $1
    `, commentID)

	return scanComment(row)
}

// ListForVideo returns a video's visible comments, newest-first.
func (r *PostgresCommentRepository) ListForVideo(ctx context.Context, videoID string, page, pageSize int) ([]models.Comment, int, error) {
	return r.listComments(ctx, `
        SELECT `+commentColumns+`, COUNT(*) OVER () AS total
        FROM comments
        WHERE video_id = $1 AND is_deleted = FALSE
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `, videoID, pageSize, (page-1)*pageSize)
}

// ListByUser returns a user's visible comments, newest-first.
func (r *PostgresCommentRepository) ListByUser(ctx context.Context, userID string, page, pageSize int) ([]models.Comment, int, error) {
	return r.listComments(ctx, `
        SELECT `+commentColumns+`, COUNT(*) OVER () AS total
        FROM comments
        WHERE user_id = $1 AND is_deleted = FALSE
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `, userID, pageSize, (page-1)*pageSize)
}

// SetDeleted toggles soft-deletion on a comment.
func (r *PostgresCommentRepository) SetDeleted(ctx context.Context, commentID string, deleted bool, at *time.Time) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	deletedAt := sql.NullTime{}
	if at != nil {
		deletedAt = sql.NullTime{Valid: true, Time: at.UTC()}
	}

	tag, err := conn.Exec(ctx, `
        UPDATE comments
        SET is_deleted = $2, deleted_at = $3, updated_at = $4
        WHERE id = $1 AND is_deleted <> $2
    `, commentID, deleted, deletedAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update comment deletion: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: comment %s", models.ErrNotFound, commentID)
	}

	return nil
}

func (r *PostgresCommentRepository) listComments(ctx context.Context, query string, args ...any) ([]models.Comment, int, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var (
		all   []models.Comment
		total int
	)
	for rows.Next() {
		var (
			comment   models.Comment
			deletedAt sql.NullTime
			rowTotal  int
		)
		if err := rows.Scan(&comment.ID, &comment.VideoID, &comment.UserID, &comment.Text, &comment.Sentiment,
			&comment.CreatedAt, &comment.UpdatedAt, &comment.IsDeleted, &deletedAt, &rowTotal); err != nil {
			return nil, 0, fmt.Errorf("scan comment: %w", err)
		}
		if deletedAt.Valid {
			t := deletedAt.Time.UTC()
			comment.DeletedAt = &t
		}
		all = append(all, comment)
		total = rowTotal
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate comments: %w", err)
	}

	return all, total, nil
}

func scanComment(row pgx.Row) (models.Comment, error) {
	var (
		comment   models.Comment
		deletedAt sql.NullTime
	)
	if err := row.Scan(&comment.ID, &comment.VideoID, &comment.UserID, &comment.Text, &comment.Sentiment,
		&comment.CreatedAt, &comment.UpdatedAt, &comment.IsDeleted, &deletedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Comment{}, fmt.Errorf("%w: comment", models.ErrNotFound)
		}
		return models.Comment{}, fmt.Errorf("scan comment: %w", err)
	}
	if deletedAt.Valid {
		t := deletedAt.Time.UTC()
		comment.DeletedAt = &t
	}
	return comment, nil
}

// PostgresFlagRepository provides PostgreSQL-backed persistence for moderation
// flags.
type PostgresFlagRepository struct {
	pool db.Pool
}

// NewPostgresFlagRepository constructs a flag repository backed by PostgreSQL.
func NewPostgresFlagRepository(pool db.Pool) *PostgresFlagRepository {
	return &PostgresFlagRepository{pool: pool}
}

const flagColumns = `id, target_type, target_id, user_id, reason_code, reason_text, status,
       moderator_id, moderator_notes, resolved_at, created_at, updated_at`

// Create persists a new flag.
func (r *PostgresFlagRepository) Create(ctx context.Context, flag models.Flag) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO flags (id, target_type, target_id, user_id, reason_code, reason_text, status,
                           moderator_id, moderator_notes, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, '', '', $8, $9)
    `, flag.ID, flag.TargetType, flag.TargetID, flag.UserID, flag.ReasonCode, flag.ReasonText,
		flag.Status, flag.CreatedAt, flag.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert flag: %w", err)
	}

	return nil
}

// Get fetches a flag by primary key.
func (r *PostgresFlagRepository) Get(ctx context.Context, flagID string) (models.Flag, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Flag{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT `+flagColumns+`
        FROM flags
        WHERE id = $1
    `, flagID)

	return scanFlag(row)
}

// List returns flags newest-first, optionally narrowed to one status, with the
// total match count.
func (r *PostgresFlagRepository) List(ctx context.Context, status *models.FlagStatus, page, pageSize int) ([]models.Flag, int, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var statusArg any
	if status != nil {
		statusArg = string(*status)
	}

	rows, err := conn.Query(ctx, `
        SELECT `+flagColumns+`, COUNT(*) OVER () AS total
        FROM flags
        WHERE $1::TEXT IS NULL OR status = $1::TEXT
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `, statusArg, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("query flags: %w", err)
	}
	defer rows.Close()

	var (
		all   []models.Flag
		total int
	)
	for rows.Next() {
		var (
			flag       models.Flag
			resolvedAt sql.NullTime
			rowTotal   int
		)
		if err := rows.Scan(&flag.ID, &flag.TargetType, &flag.TargetID, &flag.UserID, &flag.ReasonCode,
			&flag.ReasonText, &flag.Status, &flag.ModeratorID, &flag.ModeratorNotes, &resolvedAt,
			&flag.CreatedAt, &flag.UpdatedAt, &rowTotal); err != nil {
			return nil, 0, fmt.Errorf("scan flag: %w", err)
		}
		if resolvedAt.Valid {
			t := resolvedAt.Time.UTC()
			flag.ResolvedAt = &t
		}
		all = append(all, flag)
		total = rowTotal
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate flags: %w", err)
	}

	return all, total, nil
}

// StartReview claims an open flag for review. The status condition makes a
// concurrent claim visible as zero affected rows.
func (r *PostgresFlagRepository) StartReview(ctx context.Context, flagID, moderatorID string, updatedAt time.Time) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE flags
        SET status = $2, moderator_id = $3, updated_at = $4
        WHERE id = $1 AND status = $5
    `, flagID, models.FlagStatusUnderReview, moderatorID, updatedAt, models.FlagStatusOpen)
	if err != nil {
		return fmt.Errorf("update flag status under review: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: flag %s is not open", models.ErrConflict, flagID)
	}

	return nil
}

// Resolve moves a flag to a terminal status. The status condition guarantees
// exactly one of two concurrent resolvers wins.
func (r *PostgresFlagRepository) Resolve(ctx context.Context, flagID string, status models.FlagStatus, moderatorID, notes string, resolvedAt time.Time) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE flags
        SET status = $2, moderator_id = $3, moderator_notes = $4, resolved_at = $5, updated_at = $5
        WHERE id = $1 AND status IN ($6, $7)
    `, flagID, status, moderatorID, notes, resolvedAt, models.FlagStatusOpen, models.FlagStatusUnderReview)
	if err != nil {
		return fmt.Errorf("update flag resolution: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: flag %s already resolved", models.ErrConflict, flagID)
	}

	return nil
}

func scanFlag(row pgx.Row) (models.Flag, error) {
	var (
		flag       models.Flag
		resolvedAt sql.NullTime
	)
	if err := row.Scan(&flag.ID, &flag.TargetType, &flag.TargetID, &flag.UserID, &flag.ReasonCode,
		&flag.ReasonText, &flag.Status, &flag.ModeratorID, &flag.ModeratorNotes, &resolvedAt,
		&flag.CreatedAt, &flag.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Flag{}, fmt.Errorf("%w: flag", models.ErrNotFound)
		}
		return models.Flag{}, fmt.Errorf("scan flag: %w", err)
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time.UTC()
		flag.ResolvedAt = &t
	}
	return flag, nil
}

var _ UserRepository = (*PostgresUserRepository)(nil)
var _ VideoRepository = (*PostgresVideoRepository)(nil)
var _ RatingRepository = (*PostgresRatingRepository)(nil)
var _ CommentRepository = (*PostgresCommentRepository)(nil)
var _ FlagRepository = (*PostgresFlagRepository)(nil)

var _ accounts.UserStore = (*PostgresUserRepository)(nil)
var _ moderation.UserStore = (*PostgresUserRepository)(nil)
var _ catalog.VideoStore = (*PostgresVideoRepository)(nil)
var _ catalog.StatusUpdater = (*PostgresVideoRepository)(nil)
var _ ratings.VideoStore = (*PostgresVideoRepository)(nil)
var _ comments.VideoGetter = (*PostgresVideoRepository)(nil)
var _ moderation.VideoLookup = (*PostgresVideoRepository)(nil)
var _ ratings.RatingStore = (*PostgresRatingRepository)(nil)
var _ comments.CommentStore = (*PostgresCommentRepository)(nil)
var _ moderation.CommentLookup = (*PostgresCommentRepository)(nil)
var _ moderation.FlagStore = (*PostgresFlagRepository)(nil)
