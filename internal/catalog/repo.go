package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/postgres"
)

type Repo struct{ DB *pgxpool.Pool }

const packageColumns = `id, name, slug, type, price, price_type, minimum_booking_hours, description,
	short_description, inclusions, featured, sort_order, active, adult_price, child_price, infant_price,
	vat_percent, yacht_details, created_at, updated_at`

func scanPackage(row pgx.Row) (Package, error) {
	var p Package
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Type, &p.Price, &p.PriceType, &p.MinimumBookingHours,
		&p.Description, &p.ShortDescription, &p.Inclusions, &p.Featured, &p.Order, &p.Active,
		&p.Pricing.AdultPrice, &p.Pricing.ChildPrice, &p.Pricing.InfantPrice, &p.Pricing.VATPercentage,
		&p.YachtDetails, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *Repo) CreatePackage(ctx context.Context, in PackageInput) (Package, error) {
	p := NewPackage()
	in.Apply(&p)
	if err := p.Validate(); err != nil {
		return Package{}, err
	}
	p.ID = uuid.NewString()

	row := r.DB.QueryRow(ctx, `
		INSERT INTO packages (id, name, slug, type, price, price_type, minimum_booking_hours, description,
			short_description, inclusions, featured, sort_order, active, adult_price, child_price, infant_price,
			vat_percent, yacht_details)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		RETURNING `+packageColumns,
		p.ID, p.Name, p.Slug, p.Type, p.Price, p.PriceType, p.MinimumBookingHours, p.Description,
		p.ShortDescription, p.Inclusions, p.Featured, p.Order, p.Active, p.Pricing.AdultPrice,
		p.Pricing.ChildPrice, p.Pricing.InfantPrice, p.Pricing.VATPercentage, p.YachtDetails)
	out, err := scanPackage(row)
	return out, postgres.Translate(err, "package")
}

// UpdatePackage reads, merges and writes under a row lock.
func (r *Repo) UpdatePackage(ctx context.Context, id string, in PackageInput) (Package, error) {
	if err := postgres.CheckID(id, "package"); err != nil {
		return Package{}, err
	}
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Package{}, postgres.Translate(err, "package")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	p, err := scanPackage(tx.QueryRow(ctx, `SELECT `+packageColumns+` FROM packages WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		return Package{}, postgres.Translate(err, "package")
	}
	in.Apply(&p)
	if err := p.Validate(); err != nil {
		return Package{}, err
	}

	out, err := scanPackage(tx.QueryRow(ctx, `
		UPDATE packages SET name=$2, slug=$3, type=$4, price=$5, price_type=$6, minimum_booking_hours=$7,
			description=$8, short_description=$9, inclusions=$10, featured=$11, sort_order=$12, active=$13,
			adult_price=$14, child_price=$15, infant_price=$16, vat_percent=$17, yacht_details=$18,
			updated_at=now()
		WHERE id=$1
		RETURNING `+packageColumns,
		id, p.Name, p.Slug, p.Type, p.Price, p.PriceType, p.MinimumBookingHours, p.Description,
		p.ShortDescription, p.Inclusions, p.Featured, p.Order, p.Active, p.Pricing.AdultPrice,
		p.Pricing.ChildPrice, p.Pricing.InfantPrice, p.Pricing.VATPercentage, p.YachtDetails))
	if err != nil {
		return Package{}, postgres.Translate(err, "package")
	}
	if err := tx.Commit(ctx); err != nil {
		return Package{}, postgres.Translate(err, "package")
	}
	return out, nil
}

func (r *Repo) DeletePackage(ctx context.Context, id string) error {
	if err := postgres.CheckID(id, "package"); err != nil {
		return err
	}
	tag, err := r.DB.Exec(ctx, `DELETE FROM packages WHERE id=$1`, id)
	if err != nil {
		return postgres.Translate(err, "package")
	}
	if tag.RowsAffected() == 0 {
		return postgres.Translate(pgx.ErrNoRows, "package")
	}
	return nil
}

func (r *Repo) GetPackage(ctx context.Context, id string) (Package, error) {
	if err := postgres.CheckID(id, "package"); err != nil {
		return Package{}, err
	}
	p, err := scanPackage(r.DB.QueryRow(ctx, `SELECT `+packageColumns+` FROM packages WHERE id=$1`, id))
	return p, postgres.Translate(err, "package")
}

// GetPackageBySlug only sees active packages when activeOnly is set.
func (r *Repo) GetPackageBySlug(ctx context.Context, slug string, activeOnly bool) (Package, error) {
	p, err := scanPackage(r.DB.QueryRow(ctx, `
		SELECT `+packageColumns+` FROM packages
		WHERE slug=$1 AND (active OR NOT $2)`, slug, activeOnly))
	return p, postgres.Translate(err, "package")
}

func (r *Repo) ListPackages(ctx context.Context, activeOnly bool) ([]Package, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+packageColumns+` FROM packages
		WHERE active OR NOT $1
		ORDER BY sort_order, created_at`, activeOnly)
	if err != nil {
		return nil, postgres.Translate(err, "package")
	}
	defer rows.Close()

	out := []Package{}
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, postgres.Translate(err, "package")
		}
		out = append(out, p)
	}
	return out, postgres.Translate(rows.Err(), "package")
}

const faqColumns = `id, question, answer, sort_order, active, created_at, updated_at`

func scanFAQ(row pgx.Row) (FAQ, error) {
	var f FAQ
	err := row.Scan(&f.ID, &f.Question, &f.Answer, &f.Order, &f.Active, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

func (r *Repo) ListFAQs(ctx context.Context, activeOnly bool) ([]FAQ, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+faqColumns+` FROM faqs
		WHERE active OR NOT $1
		ORDER BY sort_order, created_at`, activeOnly)
	if err != nil {
		return nil, postgres.Translate(err, "faq")
	}
	defer rows.Close()

	out := []FAQ{}
	for rows.Next() {
		f, err := scanFAQ(rows)
		if err != nil {
			return nil, postgres.Translate(err, "faq")
		}
		out = append(out, f)
	}
	return out, postgres.Translate(rows.Err(), "faq")
}

func (r *Repo) CreateFAQ(ctx context.Context, in FAQInput) (FAQ, error) {
	f := FAQ{Active: true}
	in.Apply(&f)
	if err := f.Validate(); err != nil {
		return FAQ{}, err
	}
	out, err := scanFAQ(r.DB.QueryRow(ctx, `
		INSERT INTO faqs (id, question, answer, sort_order, active)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING `+faqColumns, uuid.NewString(), f.Question, f.Answer, f.Order, f.Active))
	return out, postgres.Translate(err, "faq")
}

func (r *Repo) UpdateFAQ(ctx context.Context, id string, in FAQInput) (FAQ, error) {
	if err := postgres.CheckID(id, "faq"); err != nil {
		return FAQ{}, err
	}
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return FAQ{}, postgres.Translate(err, "faq")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	f, err := scanFAQ(tx.QueryRow(ctx, `SELECT `+faqColumns+` FROM faqs WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		return FAQ{}, postgres.Translate(err, "faq")
	}
	in.Apply(&f)
	if err := f.Validate(); err != nil {
		return FAQ{}, err
	}
	out, err := scanFAQ(tx.QueryRow(ctx, `
		UPDATE faqs SET question=$2, answer=$3, sort_order=$4, active=$5, updated_at=now()
		WHERE id=$1
		RETURNING `+faqColumns, id, f.Question, f.Answer, f.Order, f.Active))
	if err != nil {
		return FAQ{}, postgres.Translate(err, "faq")
	}
	return out, postgres.Translate(tx.Commit(ctx), "faq")
}

func (r *Repo) DeleteFAQ(ctx context.Context, id string) error {
	if err := postgres.CheckID(id, "faq"); err != nil {
		return err
	}
	tag, err := r.DB.Exec(ctx, `DELETE FROM faqs WHERE id=$1`, id)
	if err != nil {
		return postgres.Translate(err, "faq")
	}
	if tag.RowsAffected() == 0 {
		return postgres.Translate(pgx.ErrNoRows, "faq")
	}
	return nil
}

const contentColumns = `section, title, subtitle, description, body, images, updated_at`

func scanContent(row pgx.Row) (Content, error) {
	var c Content
	var body []byte
	err := row.Scan(&c.Section, &c.Title, &c.Subtitle, &c.Description, &body, &c.Images, &c.UpdatedAt)
	if len(body) > 0 {
		c.Body = body
	}
	return c, err
}

func (r *Repo) GetContent(ctx context.Context, section string) (Content, error) {
	c, err := scanContent(r.DB.QueryRow(ctx, `SELECT `+contentColumns+` FROM content WHERE section=$1`, section))
	return c, postgres.Translate(err, "content")
}

func (r *Repo) ListContent(ctx context.Context) ([]Content, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+contentColumns+` FROM content ORDER BY section`)
	if err != nil {
		return nil, postgres.Translate(err, "content")
	}
	defer rows.Close()

	out := []Content{}
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, postgres.Translate(err, "content")
		}
		out = append(out, c)
	}
	return out, postgres.Translate(rows.Err(), "content")
}

// UpsertContent replaces the section wholesale.
func (r *Repo) UpsertContent(ctx context.Context, c Content) (Content, error) {
	if err := c.Validate(); err != nil {
		return Content{}, err
	}
	if c.Images == nil {
		c.Images = []string{}
	}
	var body any
	if len(c.Body) > 0 {
		body = string(c.Body)
	}
	out, err := scanContent(r.DB.QueryRow(ctx, `
		INSERT INTO content (section, title, subtitle, description, body, images, updated_at)
		VALUES ($1,$2,$3,$4,$5::jsonb,$6,$7)
		ON CONFLICT (section) DO UPDATE SET
			title=EXCLUDED.title, subtitle=EXCLUDED.subtitle, description=EXCLUDED.description,
			body=EXCLUDED.body, images=EXCLUDED.images, updated_at=EXCLUDED.updated_at
		RETURNING `+contentColumns,
		c.Section, c.Title, c.Subtitle, c.Description, body, c.Images, time.Now().UTC()))
	if err != nil {
		return Content{}, postgres.Translate(err, "content")
	}
	return out, nil
}
