package catalog

import (
	"context"
	"fmt"

	"github.com/nexusmart/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type seedProduct struct {
	name        string
	price       string
	description string
	imageURL    string
}

var demoProducts = []seedProduct{
	{"Premium Wireless Headphones", "129.99",
		"Noise-cancelling over-ear headphones with 30-hour battery life. Premium sound quality with active noise cancellation technology. Perfect for travel, work, and entertainment.",
		"https://images.unsplash.com/photo-1505740420928-5e560c06d30e?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80"},
	{"Ultra-Thin Laptop", "899.99",
		"Lightweight laptop with 16GB RAM and 512GB SSD. High-performance processor, stunning display, and all-day battery life. Perfect for professionals and students.",
		"https://images.unsplash.com/photo-1496181133206-80ce9b88a853?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80"},
	{"Smart Fitness Watch", "249.99",
		"Track heart rate, sleep, and workouts with GPS. Water-resistant design with 7-day battery life. Monitor your health and fitness goals with advanced sensors.",
		"https://images.unsplash.com/photo-1523275335684-37898b6baf30?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80"},
	{"Wireless Charging Pad", "39.99",
		"Fast charging pad compatible with all Qi-enabled devices. Sleek design with LED indicator. Supports up to 15W fast charging for compatible devices.",
		"https://images.unsplash.com/photo-1563013544-824ae1b704d3?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80"},
	{"Wireless Earbuds Pro", "89.99",
		"Premium wireless earbuds with active noise cancellation. Crystal clear sound quality with 8-hour battery life. Perfect for music lovers and commuters.",
		"https://images.unsplash.com/photo-1590658165737-15a0472108b8?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80"},
	{"Bluetooth Speaker", "59.99",
		"Portable Bluetooth speaker with 360-degree sound. Waterproof design with 12-hour battery life. Perfect for outdoor adventures and parties.",
		"https://images.unsplash.com/photo-1546435770-a3e426bf472b?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80"},
	{"Gaming Headset", "79.99",
		"Professional gaming headset with 7.1 surround sound. Noise-cancelling microphone and RGB lighting. Comfortable for long gaming sessions.",
		"https://images.unsplash.com/photo-1618366712010-f4ae9c647dcb?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80"},
	{"USB-C Hub", "49.99",
		"Multi-port USB-C hub with HDMI, USB 3.0, and SD card reader. Compact design perfect for laptops and tablets. Supports 4K video output.",
		"https://images.unsplash.com/photo-1546868871-7041f2a55e12?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80"},
	{"Mechanical Keyboard", "119.99",
		"RGB mechanical keyboard with Cherry MX switches. Programmable keys and customizable lighting. Perfect for gaming and typing enthusiasts.",
		"https://images.unsplash.com/photo-1587829741301-dc798b83add3?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80"},
	{"Wireless Mouse", "34.99",
		"Ergonomic wireless mouse with precision tracking. Long battery life and comfortable grip. Perfect for work and gaming.",
		"https://images.unsplash.com/photo-1527814050087-3793815479db?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80"},
	{"4K Monitor", "349.99",
		"27-inch 4K UHD monitor with HDR support. Ultra-thin bezels and adjustable stand. Perfect for work, gaming, and content creation.",
		"https://images.unsplash.com/photo-1527443224154-c4a3942d3acf?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80"},
	{"Portable SSD", "99.99",
		"1TB portable SSD with USB-C connectivity. Fast transfer speeds up to 1050MB/s. Compact and durable design perfect for on-the-go storage.",
		"https://images.unsplash.com/photo-1591488320449-11f0a6c8f08d?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80"},
}

// DemoProducts returns fresh copies of the demo catalog.
func DemoProducts() []*domain.Product {
	out := make([]*domain.Product, len(demoProducts))
	for i, sp := range demoProducts {
		out[i] = &domain.Product{
			Name:        sp.name,
			Price:       decimal.RequireFromString(sp.price),
			Description: sp.description,
			ImageURL:    sp.imageURL,
		}
	}
	return out
}

type ProductUpserter interface {
	UpsertProductByName(ctx context.Context, p *domain.Product) (bool, error)
}

type SeedResult struct {
	Created int
	Updated int
}

// Seed creates the demo products, updating price, description and image of
// any that already exist by name.
func Seed(ctx context.Context, repo ProductUpserter, logger *zap.Logger) (SeedResult, error) {
	var res SeedResult
	for _, p := range DemoProducts() {
		created, err := repo.UpsertProductByName(ctx, p)
		if err != nil {
			return res, fmt.Errorf("failed to seed %q: %w", p.Name, err)
		}
		if created {
			res.Created++
			logger.Info("created product", zap.String("name", p.Name), zap.Int64("id", p.ID))
		} else {
			res.Updated++
			logger.Info("updated product", zap.String("name", p.Name), zap.Int64("id", p.ID))
		}
	}
	return res, nil
}
