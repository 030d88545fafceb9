package repository

import (
	"context"

	"setlist-api/core/database"
	"setlist-api/core/logger"
	"setlist-api/modules/project/entity"

	"github.com/google/uuid"
)

const projectColumns = `id, owner_id, name, slug, description, profile_image, is_public, created_at, updated_at`

type ProjectRepositoryInterface interface {
	Create(ctx context.Context, project *entity.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Project, error)
	ListByMember(ctx context.Context, userID uuid.UUID) ([]entity.Project, error)
	UpdateProfileImage(ctx context.Context, id uuid.UUID, url string) error

	IsMember(ctx context.Context, projectID uuid.UUID, userID uuid.UUID) (bool, error)
	IsMemberByEmail(ctx context.Context, projectID uuid.UUID, email string) (bool, error)
	AddMember(ctx context.Context, projectID uuid.UUID, userID uuid.UUID) error
	ListMemberIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error)
	ListMembers(ctx context.Context, projectID uuid.UUID) ([]entity.Member, error)
	SharesProject(ctx context.Context, a uuid.UUID, b uuid.UUID) (bool, error)
}

type ProjectRepository struct {
	DB database.IDatabase
}

func NewProjectRepository(db database.IDatabase) *ProjectRepository {
	return &ProjectRepository{DB: db}
}

// Create inserts the project and makes the owner its first member.
func (r *ProjectRepository) Create(ctx context.Context, project *entity.Project) error {
	tx, err := r.DB.SQLx().BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO projects (owner_id, name, slug, description, is_public)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + projectColumns
	if err := tx.GetContext(ctx, project, query,
		project.OwnerID, project.Name, project.Slug, project.Description, project.IsPublic); err != nil {
		logger.Error("ProjectRepository:Create:Insert:Error:", err)
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO project_members (project_id, user_id) VALUES ($1, $2)`, project.ID, project.OwnerID); err != nil {
		logger.Error("ProjectRepository:Create:Owner:Error:", err)
		return err
	}

	return tx.Commit()
}

// GetByID returns nil, nil when the project does not exist.
func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Project, error) {
	var project entity.Project
	err := r.DB.GetContext(ctx, &project, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, nil
		}
		logger.Error("ProjectRepository:GetByID:Error:", err)
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) ListByMember(ctx context.Context, userID uuid.UUID) ([]entity.Project, error) {
	query := `
		SELECT p.id, p.owner_id, p.name, p.slug, p.description, p.profile_image, p.is_public, p.created_at, p.updated_at
		FROM projects p
		JOIN project_members pm ON pm.project_id = p.id
		WHERE pm.user_id = $1
		ORDER BY p.updated_at DESC
	`
	projects := []entity.Project{}
	if err := r.DB.SelectContext(ctx, &projects, query, userID); err != nil {
		logger.Error("ProjectRepository:ListByMember:Error:", err)
		return nil, err
	}
	return projects, nil
}

func (r *ProjectRepository) UpdateProfileImage(ctx context.Context, id uuid.UUID, url string) error {
	err := r.DB.ExecContext(ctx, `UPDATE projects SET profile_image = $1, updated_at = now() WHERE id = $2`, url, id)
	if err != nil {
		logger.Error("ProjectRepository:UpdateProfileImage:Error:", err)
	}
	return err
}

func (r *ProjectRepository) IsMember(ctx context.Context, projectID uuid.UUID, userID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM project_members WHERE project_id = $1 AND user_id = $2)`
	if err := r.DB.GetContext(ctx, &exists, query, projectID, userID); err != nil {
		logger.Error("ProjectRepository:IsMember:Error:", err)
		return false, err
	}
	return exists, nil
}

func (r *ProjectRepository) IsMemberByEmail(ctx context.Context, projectID uuid.UUID, email string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM project_members pm
			JOIN users u ON u.id = pm.user_id
			WHERE pm.project_id = $1 AND u.email = $2
		)
	`
	if err := r.DB.GetContext(ctx, &exists, query, projectID, email); err != nil {
		logger.Error("ProjectRepository:IsMemberByEmail:Error:", err)
		return false, err
	}
	return exists, nil
}

// AddMember is idempotent.
func (r *ProjectRepository) AddMember(ctx context.Context, projectID uuid.UUID, userID uuid.UUID) error {
	query := `
		INSERT INTO project_members (project_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (project_id, user_id) DO NOTHING
	`
	if err := r.DB.ExecContext(ctx, query, projectID, userID); err != nil {
		logger.Error("ProjectRepository:AddMember:Error:", err)
		return err
	}
	return nil
}

func (r *ProjectRepository) ListMemberIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	query := `SELECT user_id FROM project_members WHERE project_id = $1 ORDER BY joined_at`
	if err := r.DB.SelectContext(ctx, &ids, query, projectID); err != nil {
		logger.Error("ProjectRepository:ListMemberIDs:Error:", err)
		return nil, err
	}
	return ids, nil
}

func (r *ProjectRepository) ListMembers(ctx context.Context, projectID uuid.UUID) ([]entity.Member, error) {
	members := []entity.Member{}
	query := `
		SELECT u.id AS user_id, u.username, u.email, pm.joined_at
		FROM project_members pm
		JOIN users u ON u.id = pm.user_id
		WHERE pm.project_id = $1
		ORDER BY pm.joined_at
	`
	if err := r.DB.SelectContext(ctx, &members, query, projectID); err != nil {
		logger.Error("ProjectRepository:ListMembers:Error:", err)
		return nil, err
	}
	return members, nil
}

// SharesProject reports whether a and b are both members of at least one project.
func (r *ProjectRepository) SharesProject(ctx context.Context, a uuid.UUID, b uuid.UUID) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM project_members m1
			JOIN project_members m2 ON m2.project_id = m1.project_id
			WHERE m1.user_id = $1 AND m2.user_id = $2
		)
	`
	if err := r.DB.GetContext(ctx, &exists, query, a, b); err != nil {
		logger.Error("ProjectRepository:SharesProject:Error:", err)
		return false, err
	}
	return exists, nil
}
