package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"regexp"
	"strings"

	"archreport/internal/archive"
	"archreport/internal/logging"

	"gopkg.in/yaml.v3"
)

// Fixture is a YAML description tree loaded by ImportFixture.
type Fixture struct {
	Descriptions []FixtureDescription `yaml:"descriptions"`
}

// FixtureDescription is one description and its children.
type FixtureDescription struct {
	Identifier       string                  `yaml:"identifier"`
	Slug             string                  `yaml:"slug"`
	Level            string                  `yaml:"level"`
	Status           string                  `yaml:"status"`
	Culture          string                  `yaml:"culture"`
	Title            string                  `yaml:"title"`
	AccessConditions string                  `yaml:"access_conditions"`
	I18n             map[string]FixtureText  `yaml:"i18n"`
	Dates            []FixtureDate           `yaml:"dates"`
	PhysicalObjects  []FixturePhysicalObject `yaml:"physical_objects"`
	Thumbnail        string                  `yaml:"thumbnail"`
	Children         []FixtureDescription    `yaml:"children"`
}

// FixtureText holds translated fields for one extra culture.
type FixtureText struct {
	Title            string `yaml:"title"`
	AccessConditions string `yaml:"access_conditions"`
}

// FixtureDate is a creation event.
type FixtureDate struct {
	Date  string            `yaml:"date"`
	Start string            `yaml:"start"`
	End   string            `yaml:"end"`
	I18n  map[string]string `yaml:"i18n"`
}

// FixturePhysicalObject is a container. Objects are shared by label.
type FixturePhysicalObject struct {
	Label    string `yaml:"label"`
	Location string `yaml:"location"`
}

// ImportResult summarizes a fixture import.
type ImportResult struct {
	Descriptions    int
	Events          int
	PhysicalObjects int
}

// ImportFixture reads a YAML fixture, appends its descriptions under the tree
// root and renumbers the nested set.
func (s *Store) ImportFixture(ctx context.Context, r io.Reader) (*ImportResult, error) {
	timer := logging.StartTimer(logging.CategoryStore, "ImportFixture")
	defer timer.Stop()

	var fx Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}

	levels, err := s.levelTerms(ctx, archive.DefaultCulture)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	imp := &importer{tx: tx, levels: levels, result: &ImportResult{}}
	for i := range fx.Descriptions {
		if err := imp.insert(ctx, &fx.Descriptions[i], archive.RootID); err != nil {
			return nil, err
		}
	}
	if err := rebuildNestedSet(ctx, tx); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}

	logging.Store("Imported %d descriptions, %d events, %d physical object links",
		imp.result.Descriptions, imp.result.Events, imp.result.PhysicalObjects)
	return imp.result, nil
}

// levelTerms maps lower-cased level names to term ids.
func (s *Store) levelTerms(ctx context.Context, culture string) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, ti.name FROM term t JOIN term_i18n ti ON ti.id = t.id
		WHERE t.taxonomy_id = ? AND ti.culture = ?`, archive.LevelOfDescriptionTaxID, culture)
	if err != nil {
		return nil, fmt.Errorf("failed to load levels of description: %w", err)
	}
	defer rows.Close()

	levels := make(map[string]int64)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		levels[strings.ToLower(name)] = id
	}
	return levels, rows.Err()
}

type importer struct {
	tx     *sql.Tx
	levels map[string]int64
	result *ImportResult
}

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	return strings.Trim(slugUnsafe.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

func (imp *importer) insert(ctx context.Context, d *FixtureDescription, parentID int64) error {
	culture := d.Culture
	if culture == "" {
		culture = archive.DefaultCulture
	}
	status := d.Status
	if status == "" {
		status = archive.PublicationStatusPublish
	}
	if status != archive.PublicationStatusPublish && status != archive.PublicationStatusDraft {
		return fmt.Errorf("description %q: unknown status %q", d.Identifier, status)
	}

	var level interface{}
	if d.Level != "" {
		id, ok := imp.levels[strings.ToLower(d.Level)]
		if !ok {
			return fmt.Errorf("description %q: unknown level of description %q", d.Identifier, d.Level)
		}
		level = id
	}

	slug := d.Slug
	if slug == "" {
		slug = slugify(d.Title)
	}
	var slugArg interface{}
	if slug != "" {
		slugArg = slug
	}

	res, err := imp.tx.ExecContext(ctx, `
		INSERT INTO information_object (parent_id, lft, rgt, level_of_description_id, identifier, slug, publication_status, source_culture)
		VALUES (?, 0, 0, ?, ?, ?, ?, ?)`,
		parentID, level, d.Identifier, slugArg, status, culture)
	if err != nil {
		return fmt.Errorf("description %q: insert failed: %w", d.Identifier, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	imp.result.Descriptions++

	if err := imp.insertText(ctx, id, culture, d.Title, d.AccessConditions); err != nil {
		return err
	}
	for c, text := range d.I18n {
		if err := imp.insertText(ctx, id, c, text.Title, text.AccessConditions); err != nil {
			return err
		}
	}

	for sort, date := range d.Dates {
		if err := imp.insertEvent(ctx, id, culture, sort, date); err != nil {
			return err
		}
	}

	for _, po := range d.PhysicalObjects {
		if err := imp.linkPhysicalObject(ctx, id, po); err != nil {
			return err
		}
	}

	if d.Thumbnail != "" {
		if _, err := imp.tx.ExecContext(ctx,
			"INSERT INTO digital_object (object_id, usage, path) VALUES (?, 'thumbnail', ?)", id, d.Thumbnail); err != nil {
			return fmt.Errorf("description %q: thumbnail insert failed: %w", d.Identifier, err)
		}
	}

	for i := range d.Children {
		if err := imp.insert(ctx, &d.Children[i], id); err != nil {
			return err
		}
	}
	return nil
}

func (imp *importer) insertText(ctx context.Context, id int64, culture, title, access string) error {
	_, err := imp.tx.ExecContext(ctx, `
		INSERT INTO information_object_i18n (id, culture, title, access_conditions) VALUES (?, ?, ?, ?)
		ON CONFLICT(id, culture) DO UPDATE SET title = excluded.title, access_conditions = excluded.access_conditions`,
		id, culture, nullable(title), nullable(access))
	if err != nil {
		return fmt.Errorf("failed to store %s text of %d: %w", culture, id, err)
	}
	return nil
}

func (imp *importer) insertEvent(ctx context.Context, objectID int64, culture string, sort int, d FixtureDate) error {
	res, err := imp.tx.ExecContext(ctx, `
		INSERT INTO event (object_id, type, start_date, end_date, source_culture, sort)
		VALUES (?, 'creation', ?, ?, ?, ?)`,
		objectID, nullable(d.Start), nullable(d.End), culture, sort)
	if err != nil {
		return fmt.Errorf("failed to store event of %d: %w", objectID, err)
	}
	eventID, err := res.LastInsertId()
	if err != nil {
		return err
	}
	dates := map[string]string{culture: d.Date}
	for c, v := range d.I18n {
		dates[c] = v
	}
	for c, v := range dates {
		if v == "" {
			continue
		}
		if _, err := imp.tx.ExecContext(ctx,
			"INSERT INTO event_i18n (id, culture, date) VALUES (?, ?, ?)", eventID, c, v); err != nil {
			return fmt.Errorf("failed to store event date of %d: %w", objectID, err)
		}
	}
	imp.result.Events++
	return nil
}

func (imp *importer) linkPhysicalObject(ctx context.Context, objectID int64, po FixturePhysicalObject) error {
	if po.Label == "" {
		return fmt.Errorf("physical object of %d has no label", objectID)
	}
	if _, err := imp.tx.ExecContext(ctx, `
		INSERT INTO physical_object (label, location) VALUES (?, ?)
		ON CONFLICT(label) DO UPDATE SET location = COALESCE(excluded.location, physical_object.location)`,
		po.Label, nullable(po.Location)); err != nil {
		return fmt.Errorf("failed to store physical object %q: %w", po.Label, err)
	}
	var poID int64
	if err := imp.tx.QueryRowContext(ctx, "SELECT id FROM physical_object WHERE label = ?", po.Label).Scan(&poID); err != nil {
		return err
	}
	if _, err := imp.tx.ExecContext(ctx,
		"INSERT INTO relation (subject_id, object_id, type) VALUES (?, ?, 'has_physical_object')", poID, objectID); err != nil {
		return fmt.Errorf("failed to link physical object %q: %w", po.Label, err)
	}
	imp.result.PhysicalObjects++
	return nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// RebuildNestedSet renumbers lft/rgt from parent links.
func (s *Store) RebuildNestedSet(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin rebuild: %w", err)
	}
	defer tx.Rollback()

	if err := rebuildNestedSet(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

// rebuildNestedSet numbers the tree depth-first from the root. Existing
// siblings keep their lft order; new siblings (lft = 0) follow in id order.
func rebuildNestedSet(ctx context.Context, tx *sql.Tx) error {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, COALESCE(parent_id, 0) FROM information_object
		ORDER BY (lft = 0), lft, id`)
	if err != nil {
		return fmt.Errorf("failed to load tree: %w", err)
	}
	children := make(map[int64][]int64)
	total := 0
	for rows.Next() {
		var id, parent int64
		if err := rows.Scan(&id, &parent); err != nil {
			rows.Close()
			return err
		}
		if parent != 0 {
			children[parent] = append(children[parent], id)
		}
		total++
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	type frame struct {
		id   int64
		next int
	}
	bounds := make(map[int64][2]int64, total)
	counter := int64(1)
	lft := map[int64]int64{archive.RootID: counter}
	counter++
	stack := []frame{{id: archive.RootID}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		kids := children[top.id]
		if top.next < len(kids) {
			child := kids[top.next]
			top.next++
			lft[child] = counter
			counter++
			stack = append(stack, frame{id: child})
			continue
		}
		bounds[top.id] = [2]int64{lft[top.id], counter}
		counter++
		stack = stack[:len(stack)-1]
	}

	if len(bounds) != total {
		return archive.E(archive.KindCorruptTree, "store.RebuildNestedSet",
			"%d of %d descriptions are unreachable from the root", total-len(bounds), total)
	}

	stmt, err := tx.PrepareContext(ctx, "UPDATE information_object SET lft = ?, rgt = ? WHERE id = ?")
	if err != nil {
		return err
	}
	defer stmt.Close()
	for id, b := range bounds {
		if _, err := stmt.ExecContext(ctx, b[0], b[1], id); err != nil {
			return fmt.Errorf("failed to renumber %d: %w", id, err)
		}
	}
	logging.StoreDebug("Renumbered nested set: %d descriptions", total)
	return nil
}
