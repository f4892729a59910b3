// internal/services/catalog/product-search/config.go
package productsearch

type Config struct {
	MaxTermLength int
}

func LoadConfig() *Config {
	return &Config{
		MaxTermLength: 256,
	}
}
