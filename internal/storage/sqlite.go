package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/rentassist/internal/models"
	"github.com/hyperjump/rentassist/pkg/utils"
)

var _ Store = (*SQLiteCatalog)(nil)

// SQLiteCatalog implements Catalog and CatalogWriter using SQLite.
type SQLiteCatalog struct {
	db *sql.DB
}

// NewSQLiteCatalog opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist. ":memory:" opens a
// private in-memory database.
func NewSQLiteCatalog(dbPath string) (*SQLiteCatalog, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteCatalog{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT,
		search_name TEXT NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_search_name ON categories(search_name);

	CREATE TABLE IF NOT EXISTS conditions (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS price_units (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS owners (
		id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		avatar_url TEXT
	);

	CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		owner_id TEXT,
		category_id TEXT,
		title TEXT NOT NULL,
		short_description TEXT,
		base_price REAL NOT NULL DEFAULT 0,
		deposit_amount REAL NOT NULL DEFAULT 0,
		currency TEXT NOT NULL DEFAULT 'VND',
		quantity INTEGER NOT NULL DEFAULT 1,
		available_quantity INTEGER NOT NULL DEFAULT 0,
		city TEXT,
		district TEXT,
		address TEXT,
		view_count INTEGER NOT NULL DEFAULT 0,
		favorite_count INTEGER NOT NULL DEFAULT 0,
		rent_count INTEGER NOT NULL DEFAULT 0,
		condition_id INTEGER,
		price_unit_id INTEGER,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		deleted_at TIMESTAMP,
		search_title TEXT NOT NULL DEFAULT '',
		search_text TEXT NOT NULL DEFAULT '',
		search_title_folded TEXT NOT NULL DEFAULT '',
		search_text_folded TEXT NOT NULL DEFAULT '',
		search_city TEXT NOT NULL DEFAULT '',
		search_district TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_items_visible ON items(status, deleted_at, available_quantity);
	CREATE INDEX IF NOT EXISTS idx_items_category ON items(category_id);

	CREATE TABLE IF NOT EXISTS tags (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		search_name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS item_tags (
		item_id TEXT NOT NULL,
		tag_id TEXT NOT NULL,
		PRIMARY KEY (item_id, tag_id)
	);

	CREATE TABLE IF NOT EXISTS item_images (
		item_id TEXT NOT NULL,
		url TEXT NOT NULL,
		display_rank INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_item_images_item ON item_images(item_id, display_rank);

	INSERT OR IGNORE INTO conditions (id, name) VALUES (1, 'Mới'), (2, 'Như mới'), (3, 'Đã qua sử dụng');
	INSERT OR IGNORE INTO price_units (id, name) VALUES (1, 'ngày'), (2, 'tuần'), (3, 'tháng'), (4, 'giờ');
	`
	_, err := db.Exec(schema)
	return err
}

const itemColumns = `id, COALESCE(owner_id, ''), COALESCE(category_id, ''), title, COALESCE(short_description, ''),
	base_price, deposit_amount, currency, quantity, available_quantity,
	COALESCE(city, ''), COALESCE(district, ''), COALESCE(address, ''),
	view_count, favorite_count, rent_count, COALESCE(condition_id, 0), COALESCE(price_unit_id, 0),
	status, created_at, deleted_at`

const visibleClause = `status IN ('approved', 'active') AND deleted_at IS NULL AND available_quantity > 0`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(r rowScanner) (*Item, error) {
	var it Item
	var deleted sql.NullTime
	err := r.Scan(&it.ID, &it.OwnerID, &it.CategoryID, &it.Title, &it.ShortDescription,
		&it.BasePrice, &it.DepositAmount, &it.Currency, &it.Quantity, &it.AvailableQuantity,
		&it.City, &it.District, &it.Address,
		&it.ViewCount, &it.FavoriteCount, &it.RentCount, &it.ConditionID, &it.PriceUnitID,
		&it.Status, &it.CreatedAt, &deleted)
	if err != nil {
		return nil, err
	}
	if deleted.Valid {
		t := deleted.Time
		it.DeletedAt = &t
	}
	return &it, nil
}

const popularityOrder = `view_count DESC, favorite_count DESC, created_at DESC, id`

// orderBy returns the ORDER BY terms for a sort intent.
func orderBy(s models.Intent) string {
	switch s {
	case models.IntentCheap:
		return `base_price ASC, ` + popularityOrder
	case models.IntentExpensive:
		return `base_price DESC, ` + popularityOrder
	case models.IntentMostRented:
		return `rent_count DESC, ` + popularityOrder
	case models.IntentMostFavorited:
		return `favorite_count DESC, ` + popularityOrder
	default:
		return popularityOrder
	}
}

// FindVisibleItems returns visible items matching pred, ordered by pred.Sort
// and then popularity.
func (s *SQLiteCatalog) FindVisibleItems(ctx context.Context, pred ItemPredicate) ([]*Item, error) {
	var b strings.Builder
	var args []any
	b.WriteString(`SELECT ` + itemColumns + ` FROM items WHERE ` + visibleClause)

	if m := pred.Match; m != nil {
		var or []string
		titleCol, textCol := "search_title", "search_text"
		if m.Folded {
			titleCol, textCol = "search_title_folded", "search_text_folded"
		}
		if m.Phrase != "" {
			or = append(or, titleCol+` = ?`, textCol+` LIKE ? ESCAPE '\'`)
			args = append(args, m.Phrase, likePattern(m.Phrase))
		}
		if len(m.Words) > 0 {
			and := make([]string, 0, len(m.Words))
			for _, w := range m.Words {
				and = append(and, titleCol+` LIKE ? ESCAPE '\'`)
				args = append(args, likePattern(w))
			}
			or = append(or, "("+strings.Join(and, " AND ")+")")
		}
		if len(m.CategoryIDs) > 0 {
			or = append(or, `category_id IN (`+placeholders(len(m.CategoryIDs))+`)`)
			args = appendStrings(args, m.CategoryIDs)
		}
		if len(m.ItemIDs) > 0 {
			or = append(or, `id IN (`+placeholders(len(m.ItemIDs))+`)`)
			args = appendStrings(args, m.ItemIDs)
		}
		if len(or) == 0 {
			return nil, nil
		}
		b.WriteString(" AND (" + strings.Join(or, " OR ") + ")")
	}
	if pred.CategoryID != "" {
		b.WriteString(` AND category_id = ?`)
		args = append(args, pred.CategoryID)
	}
	if pred.MinPrice != nil {
		b.WriteString(` AND base_price >= ?`)
		args = append(args, *pred.MinPrice)
	}
	if pred.MaxPrice != nil {
		b.WriteString(` AND base_price <= ?`)
		args = append(args, *pred.MaxPrice)
	}
	if pred.City != "" {
		b.WriteString(` AND search_city LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(utils.NormalizeText(pred.City)))
	}
	if pred.District != "" {
		b.WriteString(` AND search_district LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(utils.NormalizeText(pred.District)))
	}
	b.WriteString(` ORDER BY ` + orderBy(pred.Sort))
	if pred.Limit > 0 {
		b.WriteString(` LIMIT ?`)
		args = append(args, pred.Limit)
	}

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()
	var items []*Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// FindItemByID returns the item record regardless of visibility, or ErrNotFound.
func (s *SQLiteCatalog) FindItemByID(ctx context.Context, id string) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return it, nil
}

// FindCategoryIDsByName returns ids of categories whose name equals or contains name.
func (s *SQLiteCatalog) FindCategoryIDsByName(ctx context.Context, name string) ([]string, error) {
	n := utils.NormalizeText(name)
	if n == "" {
		return nil, nil
	}
	return s.queryStrings(ctx,
		`SELECT id FROM categories WHERE search_name = ? OR search_name LIKE ? ESCAPE '\' ORDER BY id`,
		n, likePattern(n))
}

// FindItemIDsByTagName returns ids of items carrying a tag whose name equals or contains name.
func (s *SQLiteCatalog) FindItemIDsByTagName(ctx context.Context, name string) ([]string, error) {
	n := utils.NormalizeText(name)
	if n == "" {
		return nil, nil
	}
	return s.queryStrings(ctx,
		`SELECT DISTINCT it.item_id FROM item_tags it JOIN tags t ON t.id = it.tag_id
		 WHERE t.search_name = ? OR t.search_name LIKE ? ESCAPE '\' ORDER BY it.item_id`,
		n, likePattern(n))
}

// ImagesByItemIDs returns images per item ordered by display rank.
func (s *SQLiteCatalog) ImagesByItemIDs(ctx context.Context, itemIDs []string) (map[string][]models.Image, error) {
	out := make(map[string][]models.Image, len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id, url, display_rank FROM item_images WHERE item_id IN (`+placeholders(len(itemIDs))+`)
		 ORDER BY item_id, display_rank, rowid`, appendStrings(nil, itemIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query images: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var img models.Image
		if err := rows.Scan(&id, &img.URL, &img.DisplayRank); err != nil {
			return nil, err
		}
		out[id] = append(out[id], img)
	}
	return out, rows.Err()
}

// TagsByItemIDs returns tags per item ordered by name.
func (s *SQLiteCatalog) TagsByItemIDs(ctx context.Context, itemIDs []string) (map[string][]models.Tag, error) {
	out := make(map[string][]models.Tag, len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT it.item_id, t.id, t.name FROM item_tags it JOIN tags t ON t.id = it.tag_id
		 WHERE it.item_id IN (`+placeholders(len(itemIDs))+`) ORDER BY it.item_id, t.name`,
		appendStrings(nil, itemIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var tag models.Tag
		if err := rows.Scan(&id, &tag.ID, &tag.Name); err != nil {
			return nil, err
		}
		out[id] = append(out[id], tag)
	}
	return out, rows.Err()
}

// CategoriesByIDs returns categories keyed by id. Unknown ids are absent.
func (s *SQLiteCatalog) CategoriesByIDs(ctx context.Context, ids []string) (map[string]*models.Category, error) {
	out := make(map[string]*models.Category, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(slug, '') FROM categories WHERE id IN (`+placeholders(len(ids))+`)`,
		appendStrings(nil, ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, err
		}
		out[c.ID] = &c
	}
	return out, rows.Err()
}

// ConditionsByIDs returns conditions keyed by id.
func (s *SQLiteCatalog) ConditionsByIDs(ctx context.Context, ids []int) (map[int]*models.Condition, error) {
	out := make(map[int]*models.Condition, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name FROM conditions WHERE id IN (`+placeholders(len(ids))+`)`, appendInts(nil, ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query conditions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c models.Condition
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out[c.ID] = &c
	}
	return out, rows.Err()
}

// PriceUnitsByIDs returns price units keyed by id.
func (s *SQLiteCatalog) PriceUnitsByIDs(ctx context.Context, ids []int) (map[int]*models.PriceUnit, error) {
	out := make(map[int]*models.PriceUnit, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name FROM price_units WHERE id IN (`+placeholders(len(ids))+`)`, appendInts(nil, ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query price units: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var u models.PriceUnit
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, err
		}
		out[u.ID] = &u
	}
	return out, rows.Err()
}

// OwnersByIDs returns owner display info keyed by id.
func (s *SQLiteCatalog) OwnersByIDs(ctx context.Context, ids []string) (map[string]*models.Owner, error) {
	out := make(map[string]*models.Owner, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, display_name, COALESCE(avatar_url, '') FROM owners WHERE id IN (`+placeholders(len(ids))+`)`,
		appendStrings(nil, ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query owners: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var o models.Owner
		if err := rows.Scan(&o.ID, &o.DisplayName, &o.AvatarURL); err != nil {
			return nil, err
		}
		out[o.ID] = &o
	}
	return out, rows.Err()
}

// EnsureCategory returns the category with the given name, creating it if needed.
func (s *SQLiteCatalog) EnsureCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	key := utils.NormalizeText(name)
	if key == "" {
		return nil, fmt.Errorf("category name cannot be empty")
	}
	var c models.Category
	err := s.db.QueryRowContext(ctx, `SELECT id, name, COALESCE(slug, '') FROM categories WHERE search_name = ?`, key).
		Scan(&c.ID, &c.Name, &c.Slug)
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	c = models.Category{ID: uuid.New().String(), Name: name, Slug: slugify(name)}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, slug, search_name) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, c.Slug, key); err != nil {
		return nil, fmt.Errorf("failed to insert category: %w", err)
	}
	return &c, nil
}

// EnsureCondition returns the id of the named condition, creating it if needed.
func (s *SQLiteCatalog) EnsureCondition(ctx context.Context, name string) (int, error) {
	return s.ensureNamed(ctx, "conditions", name)
}

// EnsurePriceUnit returns the id of the named price unit, creating it if needed.
func (s *SQLiteCatalog) EnsurePriceUnit(ctx context.Context, name string) (int, error) {
	return s.ensureNamed(ctx, "price_units", name)
}

func (s *SQLiteCatalog) ensureNamed(ctx context.Context, table, name string) (int, error) {
	name = strings.TrimSpace(name)
	key := utils.NormalizeText(name)
	if key == "" {
		return 0, fmt.Errorf("%s name cannot be empty", table)
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM `+table)
	if err != nil {
		return 0, err
	}
	found := 0
	for rows.Next() {
		var id int
		var n string
		if err := rows.Scan(&id, &n); err != nil {
			rows.Close()
			return 0, err
		}
		if found == 0 && utils.NormalizeText(n) == key {
			found = id
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if found != 0 {
		return found, nil
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO `+table+` (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	n, err := res.LastInsertId()
	return int(n), err
}

// SaveOwner inserts or replaces owner display info.
func (s *SQLiteCatalog) SaveOwner(ctx context.Context, o *models.Owner) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO owners (id, display_name, avatar_url) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET display_name = excluded.display_name, avatar_url = excluded.avatar_url`,
		o.ID, o.DisplayName, o.AvatarURL)
	return err
}

// SaveItem inserts or updates an item. Search columns are derived here.
func (s *SQLiteCatalog) SaveItem(ctx context.Context, it *Item) error {
	if it.ID == "" {
		it.ID = uuid.New().String()
	}
	if it.CreatedAt.IsZero() {
		it.CreatedAt = time.Now()
	}
	if it.Currency == "" {
		it.Currency = "VND"
	}
	if it.Status == "" {
		it.Status = StatusPending
	}
	title := utils.NormalizeText(it.Title)
	text := strings.TrimSpace(title + " " + utils.NormalizeText(it.ShortDescription))
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO items (id, owner_id, category_id, title, short_description, base_price, deposit_amount,
			currency, quantity, available_quantity, city, district, address, view_count, favorite_count,
			rent_count, condition_id, price_unit_id, status, created_at, deleted_at,
			search_title, search_text, search_title_folded, search_text_folded, search_city, search_district)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			owner_id = excluded.owner_id, category_id = excluded.category_id, title = excluded.title,
			short_description = excluded.short_description, base_price = excluded.base_price,
			deposit_amount = excluded.deposit_amount, currency = excluded.currency,
			quantity = excluded.quantity, available_quantity = excluded.available_quantity,
			city = excluded.city, district = excluded.district, address = excluded.address,
			view_count = excluded.view_count, favorite_count = excluded.favorite_count,
			rent_count = excluded.rent_count, condition_id = excluded.condition_id,
			price_unit_id = excluded.price_unit_id, status = excluded.status, deleted_at = excluded.deleted_at,
			search_title = excluded.search_title, search_text = excluded.search_text,
			search_title_folded = excluded.search_title_folded, search_text_folded = excluded.search_text_folded,
			search_city = excluded.search_city, search_district = excluded.search_district`,
		it.ID, nullString(it.OwnerID), nullString(it.CategoryID), it.Title, it.ShortDescription,
		it.BasePrice, it.DepositAmount, it.Currency, it.Quantity, it.AvailableQuantity,
		it.City, it.District, it.Address, it.ViewCount, it.FavoriteCount, it.RentCount,
		nullInt(it.ConditionID), nullInt(it.PriceUnitID), it.Status, it.CreatedAt, it.DeletedAt,
		title, text, utils.FoldDiacritics(title), utils.FoldDiacritics(text),
		utils.NormalizeText(it.City), utils.NormalizeText(it.District),
	)
	if err != nil {
		return fmt.Errorf("failed to save item: %w", err)
	}
	return nil
}

// SetItemTags replaces the tags of an item, creating tags by name as needed.
func (s *SQLiteCatalog) SetItemTags(ctx context.Context, itemID string, names []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM item_tags WHERE item_id = ?`, itemID); err != nil {
		return err
	}
	for _, name := range names {
		name = strings.TrimSpace(name)
		key := utils.NormalizeText(name)
		if key == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO tags (id, name, search_name) VALUES (?, ?, ?)`,
			uuid.New().String(), name, key); err != nil {
			return fmt.Errorf("failed to insert tag: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO item_tags (item_id, tag_id) SELECT ?, id FROM tags WHERE search_name = ?`,
			itemID, key); err != nil {
			return fmt.Errorf("failed to link tag: %w", err)
		}
	}
	return tx.Commit()
}

// SetItemImages replaces the images of an item; list order becomes display rank.
func (s *SQLiteCatalog) SetItemImages(ctx context.Context, itemID string, urls []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM item_images WHERE item_id = ?`, itemID); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO item_images (item_id, url, display_rank) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	rank := 0
	for _, u := range urls {
		if u = strings.TrimSpace(u); u == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, itemID, u, rank); err != nil {
			return err
		}
		rank++
	}
	return tx.Commit()
}

// SoftDeleteItem marks an item deleted; it stops being visible.
func (s *SQLiteCatalog) SoftDeleteItem(ctx context.Context, itemID string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE items SET deleted_at = ? WHERE id = ?`, time.Now(), itemID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountItems returns the number of item records, visible or not.
func (s *SQLiteCatalog) CountItems(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n)
	return n, err
}

// AllItems returns every item record in id order.
func (s *SQLiteCatalog) AllItems(ctx context.Context) ([]*Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()
	var items []*Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Close closes the database.
func (s *SQLiteCatalog) Close() error {
	return s.db.Close()
}

func (s *SQLiteCatalog) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func appendStrings(args []any, vs []string) []any {
	for _, v := range vs {
		args = append(args, v)
	}
	return args
}

func appendInts(args []any, vs []int) []any {
	for _, v := range vs {
		args = append(args, v)
	}
	return args
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}

func slugify(name string) string {
	folded := strings.ToLower(utils.FoldDiacritics(name))
	return strings.Join(strings.FieldsFunc(folded, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}), "-")
}
