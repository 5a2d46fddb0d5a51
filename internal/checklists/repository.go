package checklists

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fieldops_backend/platform/apperr"
)

type Template struct {
	ID             uuid.UUID      `json:"id"`
	OrganizationID uuid.UUID      `json:"organizationId"`
	Name           string         `json:"name"`
	Description    *string        `json:"description,omitempty"`
	IsActive       bool           `json:"isActive"`
	Items          []TemplateItem `json:"items,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

type TemplateItem struct {
	ID            uuid.UUID `json:"id"`
	TemplateID    uuid.UUID `json:"templateId"`
	Label         string    `json:"label"`
	Position      int       `json:"position"`
	RequiresPhoto bool      `json:"requiresPhoto"`
}

type Instance struct {
	ID             uuid.UUID      `json:"id"`
	OrganizationID uuid.UUID      `json:"organizationId"`
	TemplateID     uuid.UUID      `json:"templateId"`
	VisitID        *uuid.UUID     `json:"visitId,omitempty"`
	Status         string         `json:"status"`
	Items          []InstanceItem `json:"items,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	CompletedAt    *time.Time     `json:"completedAt,omitempty"`
}

type InstanceItem struct {
	ID             uuid.UUID  `json:"id"`
	InstanceID     uuid.UUID  `json:"instanceId"`
	TemplateItemID uuid.UUID  `json:"templateItemId"`
	Label          string     `json:"label"`
	Position       int        `json:"position"`
	RequiresPhoto  bool       `json:"requiresPhoto"`
	IsDone         bool       `json:"isDone"`
	Note           *string    `json:"note,omitempty"`
	PhotoKey       *string    `json:"photoKey,omitempty"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type NewTemplateItem struct {
	Label         string
	RequiresPhoto bool
}

// CreateTemplate inserts a template with its items in one transaction.
// Item positions follow the order given.
func (r *Repository) CreateTemplate(ctx context.Context, organizationID uuid.UUID, name string, description *string, items []NewTemplateItem) (*Template, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create template: %w", err)
	}
	defer tx.Rollback(ctx)

	var tpl Template
	err = tx.QueryRow(ctx, `
		INSERT INTO checklist_templates (organization_id, name, description)
		VALUES ($1, $2, $3)
		RETURNING id, organization_id, name, description, is_active, created_at, updated_at
	`, organizationID, name, description).Scan(
		&tpl.ID, &tpl.OrganizationID, &tpl.Name, &tpl.Description, &tpl.IsActive, &tpl.CreatedAt, &tpl.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert template: %w", err)
	}

	for position, item := range items {
		var tplItem TemplateItem
		err = tx.QueryRow(ctx, `
			INSERT INTO checklist_template_items (template_id, label, position, requires_photo)
			VALUES ($1, $2, $3, $4)
			RETURNING id, template_id, label, position, requires_photo
		`, tpl.ID, item.Label, position, item.RequiresPhoto).Scan(
			&tplItem.ID, &tplItem.TemplateID, &tplItem.Label, &tplItem.Position, &tplItem.RequiresPhoto,
		)
		if err != nil {
			return nil, fmt.Errorf("insert template item: %w", err)
		}
		tpl.Items = append(tpl.Items, tplItem)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create template: %w", err)
	}
	return &tpl, nil
}

func (r *Repository) GetTemplate(ctx context.Context, id, organizationID uuid.UUID) (*Template, error) {
	var tpl Template
	err := r.pool.QueryRow(ctx, `
		SELECT id, organization_id, name, description, is_active, created_at, updated_at
		FROM checklist_templates
		WHERE id = $1 AND organization_id = $2
	`, id, organizationID).Scan(
		&tpl.ID, &tpl.OrganizationID, &tpl.Name, &tpl.Description, &tpl.IsActive, &tpl.CreatedAt, &tpl.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("checklist template not found")
		}
		return nil, fmt.Errorf("get template: %w", err)
	}

	items, err := r.templateItems(ctx, tpl.ID)
	if err != nil {
		return nil, err
	}
	tpl.Items = items
	return &tpl, nil
}

func (r *Repository) templateItems(ctx context.Context, templateID uuid.UUID) ([]TemplateItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, template_id, label, position, requires_photo
		FROM checklist_template_items
		WHERE template_id = $1
		ORDER BY position ASC
	`, templateID)
	if err != nil {
		return nil, fmt.Errorf("list template items: %w", err)
	}
	defer rows.Close()

	items := make([]TemplateItem, 0)
	for rows.Next() {
		var item TemplateItem
		if err := rows.Scan(&item.ID, &item.TemplateID, &item.Label, &item.Position, &item.RequiresPhoto); err != nil {
			return nil, fmt.Errorf("scan template item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *Repository) ListTemplates(ctx context.Context, organizationID uuid.UUID, activeOnly bool) ([]Template, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, organization_id, name, description, is_active, created_at, updated_at
		FROM checklist_templates
		WHERE organization_id = $1 AND ($2 = false OR is_active = true)
		ORDER BY name ASC
	`, organizationID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	templates := make([]Template, 0)
	for rows.Next() {
		var tpl Template
		if err := rows.Scan(&tpl.ID, &tpl.OrganizationID, &tpl.Name, &tpl.Description, &tpl.IsActive, &tpl.CreatedAt, &tpl.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, tpl)
	}
	return templates, rows.Err()
}

// SetTemplateActive archives or restores a template. Existing instances keep
// referencing archived templates.
func (r *Repository) SetTemplateActive(ctx context.Context, id, organizationID uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE checklist_templates SET is_active = $3, updated_at = now()
		WHERE id = $1 AND organization_id = $2
	`, id, organizationID, active)
	if err != nil {
		return fmt.Errorf("set template active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("checklist template not found")
	}
	return nil
}

func (r *Repository) CountTemplates(ctx context.Context, organizationID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM checklist_templates WHERE organization_id = $1
	`, organizationID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count templates: %w", err)
	}
	return count, nil
}

// CreateInstance materializes a template into a working checklist, copying
// every template item, in one transaction.
func (r *Repository) CreateInstance(ctx context.Context, organizationID, templateID uuid.UUID, visitID *uuid.UUID) (*Instance, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create instance: %w", err)
	}
	defer tx.Rollback(ctx)

	var inst Instance
	err = tx.QueryRow(ctx, `
		INSERT INTO checklist_instances (organization_id, template_id, visit_id)
		VALUES ($1, $2, $3)
		RETURNING id, organization_id, template_id, visit_id, status, created_at, completed_at
	`, organizationID, templateID, visitID).Scan(
		&inst.ID, &inst.OrganizationID, &inst.TemplateID, &inst.VisitID, &inst.Status, &inst.CreatedAt, &inst.CompletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert instance: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO checklist_instance_items (instance_id, template_item_id)
		SELECT $1, id FROM checklist_template_items WHERE template_id = $2
	`, inst.ID, templateID)
	if err != nil {
		return nil, fmt.Errorf("insert instance items: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create instance: %w", err)
	}

	items, err := r.instanceItems(ctx, inst.ID)
	if err != nil {
		return nil, err
	}
	inst.Items = items
	return &inst, nil
}

func (r *Repository) GetInstance(ctx context.Context, id, organizationID uuid.UUID) (*Instance, error) {
	var inst Instance
	err := r.pool.QueryRow(ctx, `
		SELECT id, organization_id, template_id, visit_id, status, created_at, completed_at
		FROM checklist_instances
		WHERE id = $1 AND organization_id = $2
	`, id, organizationID).Scan(
		&inst.ID, &inst.OrganizationID, &inst.TemplateID, &inst.VisitID, &inst.Status, &inst.CreatedAt, &inst.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("checklist not found")
		}
		return nil, fmt.Errorf("get instance: %w", err)
	}

	items, err := r.instanceItems(ctx, inst.ID)
	if err != nil {
		return nil, err
	}
	inst.Items = items
	return &inst, nil
}

func (r *Repository) instanceItems(ctx context.Context, instanceID uuid.UUID) ([]InstanceItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ii.id, ii.instance_id, ii.template_item_id, ti.label, ti.position, ti.requires_photo,
			ii.is_done, ii.note, ii.photo_key, ii.completed_at
		FROM checklist_instance_items ii
		JOIN checklist_template_items ti ON ti.id = ii.template_item_id
		WHERE ii.instance_id = $1
		ORDER BY ti.position ASC
	`, instanceID)
	if err != nil {
		return nil, fmt.Errorf("list instance items: %w", err)
	}
	defer rows.Close()

	items := make([]InstanceItem, 0)
	for rows.Next() {
		var item InstanceItem
		err := rows.Scan(
			&item.ID, &item.InstanceID, &item.TemplateItemID, &item.Label, &item.Position,
			&item.RequiresPhoto, &item.IsDone, &item.Note, &item.PhotoKey, &item.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan instance item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *Repository) ListInstances(ctx context.Context, organizationID uuid.UUID, visitID *uuid.UUID, status string) ([]Instance, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, organization_id, template_id, visit_id, status, created_at, completed_at
		FROM checklist_instances
		WHERE organization_id = $1
			AND ($2::uuid IS NULL OR visit_id = $2)
			AND ($3 = '' OR status = $3)
		ORDER BY created_at DESC
	`, organizationID, visitID, status)
	if err != nil {
		return nil, fmt.Errorf("list instances: %w", err)
	}
	defer rows.Close()

	instances := make([]Instance, 0)
	for rows.Next() {
		var inst Instance
		err := rows.Scan(&inst.ID, &inst.OrganizationID, &inst.TemplateID, &inst.VisitID, &inst.Status, &inst.CreatedAt, &inst.CompletedAt)
		if err != nil {
			return nil, fmt.Errorf("scan instance: %w", err)
		}
		instances = append(instances, inst)
	}
	return instances, rows.Err()
}

type UpdateItemParams struct {
	IsDone   *bool
	Note     *string
	PhotoKey *string
}

// UpdateInstanceItem toggles completion, attaches a note, or records an
// uploaded photo key. The item must belong to an instance in the caller's
// organization.
func (r *Repository) UpdateInstanceItem(ctx context.Context, itemID, organizationID uuid.UUID, params UpdateItemParams) (*InstanceItem, error) {
	var doneAt *time.Time
	if params.IsDone != nil && *params.IsDone {
		now := time.Now()
		doneAt = &now
	}

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		UPDATE checklist_instance_items ii SET
			is_done = COALESCE($3, ii.is_done),
			note = COALESCE($4, ii.note),
			photo_key = COALESCE($5, ii.photo_key),
			completed_at = CASE
				WHEN $3::boolean IS NULL THEN ii.completed_at
				WHEN $3 THEN $6
				ELSE NULL
			END
		FROM checklist_instances i
		WHERE ii.id = $1 AND ii.instance_id = i.id AND i.organization_id = $2
		RETURNING ii.id
	`, itemID, organizationID, params.IsDone, params.Note, params.PhotoKey, doneAt).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("checklist item not found")
		}
		return nil, fmt.Errorf("update instance item: %w", err)
	}

	return r.getInstanceItem(ctx, id)
}

func (r *Repository) getInstanceItem(ctx context.Context, itemID uuid.UUID) (*InstanceItem, error) {
	var item InstanceItem
	err := r.pool.QueryRow(ctx, `
		SELECT ii.id, ii.instance_id, ii.template_item_id, ti.label, ti.position, ti.requires_photo,
			ii.is_done, ii.note, ii.photo_key, ii.completed_at
		FROM checklist_instance_items ii
		JOIN checklist_template_items ti ON ti.id = ii.template_item_id
		WHERE ii.id = $1
	`, itemID).Scan(
		&item.ID, &item.InstanceID, &item.TemplateItemID, &item.Label, &item.Position,
		&item.RequiresPhoto, &item.IsDone, &item.Note, &item.PhotoKey, &item.CompletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get instance item: %w", err)
	}
	return &item, nil
}

func (r *Repository) CompleteInstance(ctx context.Context, id, organizationID uuid.UUID) (*Instance, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE checklist_instances SET status = 'completed', completed_at = now()
		WHERE id = $1 AND organization_id = $2 AND status = 'open'
	`, id, organizationID)
	if err != nil {
		return nil, fmt.Errorf("complete instance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperr.NotFound("open checklist not found")
	}
	return r.GetInstance(ctx, id, organizationID)
}
