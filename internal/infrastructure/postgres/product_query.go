package postgres

import (
	"strconv"
	"strings"

	"github.com/oksasatya/go-ddd-ecommerce/internal/domain/repository"
)

const productColumns = `p.id, p.sku, p.name, p.slug, p.description, p.price, p.compare_price, p.cost,
	p.stock, p.low_stock_threshold, p.weight, p.status, p.featured, p.created_at, p.updated_at`

// Relation loaders take the page's product ids as $1.
const (
	productCategoriesSQL = `SELECT pc.product_id, pc.category_id, pc.created_at, c.id, c.name, c.slug, c.parent_id
	FROM product_categories pc
	JOIN categories c ON c.id = pc.category_id
	WHERE pc.product_id = ANY($1::uuid[])
	ORDER BY pc.product_id, c.name ASC`

	// images come back in display order: position, then upload order, then id
	productImagesSQL = `SELECT id, product_id, url, alt_text, position, is_primary, created_at
	FROM product_images
	WHERE product_id = ANY($1::uuid[])
	ORDER BY product_id, position ASC, created_at ASC, id ASC`
)

// sortColumns whitelists the orderable columns; anything else falls back to created_at.
var sortColumns = map[string]string{
	repository.SortByPrice:     "p.price",
	repository.SortByName:      "p.name",
	repository.SortByCreatedAt: "p.created_at",
	repository.SortByUpdatedAt: "p.updated_at",
	repository.SortByFeatured:  "p.featured",
}

// sqlArgs accumulates positional parameters.
type sqlArgs []any

func (a *sqlArgs) add(v any) string {
	*a = append(*a, v)
	return "$" + strconv.Itoa(len(*a))
}

// buildProductWhere renders the filter as a WHERE clause (empty when unfiltered).
// Conditions are AND-ed; the search term matches name OR description.
func buildProductWhere(f repository.ProductFilter, args *sqlArgs) string {
	var conds []string
	if f.MinPrice != nil {
		conds = append(conds, "p.price >= "+args.add(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		conds = append(conds, "p.price <= "+args.add(*f.MaxPrice))
	}
	if f.MinStock != nil {
		conds = append(conds, "p.stock >= "+args.add(*f.MinStock))
	}
	if f.Status != nil {
		conds = append(conds, "p.status = "+args.add(string(*f.Status)))
	}
	if f.Featured != nil {
		conds = append(conds, "p.featured = "+args.add(*f.Featured))
	}
	if f.Search != "" {
		ph := args.add("%" + escapeLike(f.Search) + "%")
		conds = append(conds, "(p.name LIKE "+ph+` ESCAPE '\' OR p.description LIKE `+ph+` ESCAPE '\')`)
	}
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// buildProductOrder always ends with p.id so that pages partition the result set.
func buildProductOrder(sortBy, sortOrder string) string {
	col, ok := sortColumns[sortBy]
	if !ok {
		col = "p.created_at"
		if sortOrder == "" {
			sortOrder = repository.SortDesc
		}
	}
	dir := "ASC"
	if strings.EqualFold(sortOrder, repository.SortDesc) {
		dir = "DESC"
	}
	return " ORDER BY " + col + " " + dir + ", p.id ASC"
}

func buildListProductsSQL(f repository.ProductFilter, opts repository.ProductListOptions) (string, []any) {
	var args sqlArgs
	q := "SELECT " + productColumns + " FROM products p" +
		buildProductWhere(f, &args) +
		buildProductOrder(opts.SortBy, opts.SortOrder)
	q += " LIMIT " + args.add(opts.Limit) + " OFFSET " + args.add(opts.Offset)
	return q, args
}

func buildCountProductsSQL(f repository.ProductFilter) (string, []any) {
	var args sqlArgs
	return "SELECT count(*) FROM products p" + buildProductWhere(f, &args), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside a LIKE pattern.
func escapeLike(s string) string { return likeEscaper.Replace(s) }
