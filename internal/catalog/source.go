// internal/catalog/source.go
package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"product-chatbot/internal/models"
)

// LoadFromPostgres reads every row of table once, ordered by id. Query or scan
// failures degrade to an empty catalog the same way a bad file does.
func LoadFromPostgres(ctx context.Context, db *sql.DB, table string, log Logger) *Catalog {
	source := "postgres:" + table

	products, err := queryProducts(ctx, db, table)
	if err != nil {
		logLoadFailure(log, source, err)
		return publish(Empty())
	}

	log.Info("catalog loaded", map[string]interface{}{
		"source":   source,
		"products": len(products),
	})
	return publish(New(products))
}

func queryProducts(ctx context.Context, db *sql.DB, table string) ([]models.Product, error) {
	query := fmt.Sprintf(
		"SELECT id, sku, name, brand, category, price, stock, description FROM %s ORDER BY id",
		pq.QuoteIdentifier(table),
	)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var (
			p                                 models.Product
			sku, name, brand, category, descr sql.NullString
			price                             sql.NullFloat64
			stock                             sql.NullInt64
		)
		if err := rows.Scan(&p.ID, &sku, &name, &brand, &category, &price, &stock, &descr); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.SKU = sku.String
		p.Name = name.String
		p.Brand = brand.String
		p.Category = category.String
		p.Description = descr.String
		if price.Valid {
			p.Price = models.Float64(price.Float64)
		}
		if stock.Valid {
			p.Stock = models.Int(int(stock.Int64))
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return products, nil
}
