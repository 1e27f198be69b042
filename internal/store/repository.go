package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"archreport/internal/archive"
	"archreport/internal/logging"
)

const nodeColumns = `id, COALESCE(parent_id, 0), lft, rgt, COALESCE(level_of_description_id, 0),
	COALESCE(identifier, ''), COALESCE(slug, ''), publication_status, source_culture`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanNode(row scanner) (*archive.Node, error) {
	n := &archive.Node{}
	err := row.Scan(&n.ID, &n.ParentID, &n.Lft, &n.Rgt, &n.LevelOfDescriptionID,
		&n.Identifier, &n.Slug, &n.PublicationStatus, &n.SourceCulture)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (s *Store) queryNodes(ctx context.Context, query string, args ...interface{}) ([]*archive.Node, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []*archive.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// FindByID loads one description. A missing id yields an archive.ErrNotFound match.
func (s *Store) FindByID(ctx context.Context, id int64) (*archive.Node, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+nodeColumns+" FROM information_object WHERE id = ?", id)
	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, archive.E(archive.KindNotFound, "store.FindByID", "no description with id %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load description %d: %w", id, err)
	}
	return n, nil
}

// FindBySlug loads one description by slug.
func (s *Store) FindBySlug(ctx context.Context, slug string) (*archive.Node, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+nodeColumns+" FROM information_object WHERE slug = ?", slug)
	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, archive.E(archive.KindNotFound, "store.FindBySlug", "no description with slug %q", slug)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load description %q: %w", slug, err)
	}
	return n, nil
}

// QueryDescendantsInclusive returns root and its whole subtree in ascending
// lft order, with drafts removed unless the visibility allows them.
func (s *Store) QueryDescendantsInclusive(ctx context.Context, root *archive.Node, vis archive.Visibility) ([]*archive.Node, error) {
	timer := logging.StartTimer(logging.CategoryStore, "QueryDescendantsInclusive")
	defer timer.Stop()

	query := "SELECT " + nodeColumns + " FROM information_object WHERE lft >= ? AND rgt <= ?"
	args := []interface{}{root.Lft, root.Rgt}
	if !vis.IncludesDrafts() {
		query += " AND publication_status <> ?"
		args = append(args, archive.PublicationStatusDraft)
	}
	query += " ORDER BY lft ASC"

	nodes, err := s.queryNodes(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query descendants of %d: %w", root.ID, err)
	}
	logging.StoreDebug("Subtree of %d: %d descriptions (drafts=%v)", root.ID, len(nodes), vis.IncludesDrafts())
	return nodes, nil
}

// AncestorsOf returns the ancestors of n in root-to-node order. The tree root
// is included; n itself is not.
func (s *Store) AncestorsOf(ctx context.Context, n *archive.Node) ([]*archive.Node, error) {
	nodes, err := s.queryNodes(ctx,
		"SELECT "+nodeColumns+" FROM information_object WHERE lft < ? AND rgt > ? ORDER BY lft ASC",
		n.Lft, n.Rgt)
	if err != nil {
		return nil, fmt.Errorf("failed to query ancestors of %d: %w", n.ID, err)
	}
	return nodes, nil
}

// ResolveClassifier maps a term name (case-insensitive) in a culture to its id
// within a taxonomy. Zero or several matches are both a NotFound failure.
func (s *Store) ResolveClassifier(ctx context.Context, name string, taxonomyID int64, culture string) (int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id FROM term t
		JOIN term_i18n ti ON ti.id = t.id
		WHERE ti.name = ? COLLATE NOCASE AND ti.culture = ? AND t.taxonomy_id = ?`,
		name, culture, taxonomyID)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve term %q: %w", name, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("failed to resolve term %q: %w", name, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to resolve term %q: %w", name, err)
	}

	switch len(ids) {
	case 1:
		return ids[0], nil
	case 0:
		return 0, archive.E(archive.KindNotFound, "store.ResolveClassifier",
			"can't find '%s' level of description in term table", name)
	default:
		return 0, archive.E(archive.KindNotFound, "store.ResolveClassifier",
			"'%s' level of description is ambiguous (%d terms)", name, len(ids))
	}
}

var textColumns = map[archive.TextField]string{
	archive.FieldTitle:            "title",
	archive.FieldAccessConditions: "access_conditions",
}

// Text returns a localized description field. With fallback set, an empty
// value in culture falls back to the description's source culture.
func (s *Store) Text(ctx context.Context, n *archive.Node, field archive.TextField, culture string, fallback bool) (string, error) {
	col, ok := textColumns[field]
	if !ok {
		return "", fmt.Errorf("unknown text field %q", field)
	}

	value, err := s.i18nValue(ctx, col, n.ID, culture)
	if err != nil {
		return "", err
	}
	if value != "" || !fallback || n.SourceCulture == "" || n.SourceCulture == culture {
		return value, nil
	}
	return s.i18nValue(ctx, col, n.ID, n.SourceCulture)
}

func (s *Store) i18nValue(ctx context.Context, col string, id int64, culture string) (string, error) {
	var value sql.NullString
	query := fmt.Sprintf("SELECT %s FROM information_object_i18n WHERE id = ? AND culture = ?", col)
	err := s.db.QueryRowContext(ctx, query, id, culture).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s of %d: %w", col, id, err)
	}
	return value.String, nil
}

// CreationEvents returns the creation events of a description in stored order.
// The rendered date falls back to the event's source culture.
func (s *Store) CreationEvents(ctx context.Context, objectID int64, culture string) ([]archive.CreationEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.object_id, COALESCE(e.start_date, ''), COALESCE(e.end_date, ''),
			COALESCE(NULLIF(cur.date, ''), src.date, '')
		FROM event e
		LEFT JOIN event_i18n cur ON cur.id = e.id AND cur.culture = ?
		LEFT JOIN event_i18n src ON src.id = e.id AND src.culture = e.source_culture
		WHERE e.object_id = ? AND e.type = 'creation'
		ORDER BY e.sort, e.id`, culture, objectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query creation events of %d: %w", objectID, err)
	}
	defer rows.Close()

	var events []archive.CreationEvent
	for rows.Next() {
		var e archive.CreationEvent
		if err := rows.Scan(&e.ID, &e.ObjectID, &e.StartDate, &e.EndDate, &e.Date); err != nil {
			return nil, fmt.Errorf("failed to scan creation event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// PhysicalObjects returns the containers related to a description, in the
// order the relations were stored.
func (s *Store) PhysicalObjects(ctx context.Context, objectID int64) ([]archive.PhysicalObject, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.label, COALESCE(p.location, '')
		FROM physical_object p
		JOIN relation r ON r.subject_id = p.id
		WHERE r.object_id = ? AND r.type = 'has_physical_object'
		ORDER BY r.id`, objectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query physical objects of %d: %w", objectID, err)
	}
	defer rows.Close()

	var objects []archive.PhysicalObject
	for rows.Next() {
		var p archive.PhysicalObject
		if err := rows.Scan(&p.ID, &p.Label, &p.Location); err != nil {
			return nil, fmt.Errorf("failed to scan physical object: %w", err)
		}
		objects = append(objects, p)
	}
	return objects, rows.Err()
}

// Thumbnail returns the thumbnail path of a description, or "" if it has none.
func (s *Store) Thumbnail(ctx context.Context, objectID int64) (string, error) {
	var path string
	err := s.db.QueryRowContext(ctx,
		"SELECT path FROM digital_object WHERE object_id = ? AND usage = 'thumbnail' ORDER BY id LIMIT 1",
		objectID).Scan(&path)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read thumbnail of %d: %w", objectID, err)
	}
	return path, nil
}
