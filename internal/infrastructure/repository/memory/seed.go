package memory

import (
	"github.com/mrops-br/shopverse-api/internal/domain"
	"github.com/shopspring/decimal"
)

// SampleCategories returns the storefront's built-in categories.
func SampleCategories() []domain.Category {
	return []domain.Category{
		{ID: "1", Name: "Electronics", Slug: "electronics", Description: "Latest gadgets and tech accessories", Image: "/images/categories/electronics.jpg"},
		{ID: "2", Name: "Fashion", Slug: "fashion", Description: "Trendy clothing and accessories", Image: "/images/categories/fashion.jpg"},
		{ID: "3", Name: "Home & Living", Slug: "home-living", Description: "Furniture, decor and kitchen essentials", Image: "/images/categories/home-living.jpg"},
		{ID: "4", Name: "Sports", Slug: "sports", Description: "Gear for training and the outdoors", Image: "/images/categories/sports.jpg"},
	}
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func was(s string) *decimal.Decimal {
	d := money(s)
	return &d
}

// SampleProducts returns the storefront's built-in products.
func SampleProducts() []domain.Product {
	return []domain.Product{
		{
			ID: "1", Name: "Wireless Noise-Cancelling Headphones", Category: "electronics",
			Price: money("249.99"), OriginalPrice: was("299.99"), Rating: 4.8, Reviews: 2453,
			Image: "/images/products/headphones.jpg", IsSale: true,
			Description: "Over-ear headphones with adaptive noise cancelling and 30-hour battery life.",
		},
		{
			ID: "2", Name: "Smart Watch Series 5", Category: "electronics",
			Price: money("399.00"), Rating: 4.6, Reviews: 1820,
			Image: "/images/products/smartwatch.jpg", IsNew: true,
			Description: "Always-on display, heart rate and sleep tracking, water resistant to 50 m.",
		},
		{
			ID: "3", Name: "Portable Bluetooth Speaker", Category: "electronics",
			Price: money("79.99"), OriginalPrice: was("99.99"), Rating: 4.5, Reviews: 987,
			Image: "/images/products/speaker.jpg", IsSale: true,
			Description: "Rugged waterproof speaker with 360-degree sound.",
		},
		{
			ID: "4", Name: "USB-C Fast Charger 65W", Category: "electronics",
			Price: money("39.99"), Rating: 4.4, Reviews: 512,
			Image: "/images/products/charger.jpg",
			Description: "Compact GaN charger for laptops, tablets and phones.",
		},
		{
			ID: "5", Name: "Classic Denim Jacket", Category: "fashion",
			Price: money("89.50"), Rating: 4.3, Reviews: 640,
			Image: "/images/products/denim-jacket.jpg", IsNew: true,
			Description: "Washed cotton denim with a relaxed fit.",
		},
		{
			ID: "6", Name: "Leather Crossbody Bag", Category: "fashion",
			Price: money("129.00"), OriginalPrice: was("159.00"), Rating: 4.7, Reviews: 431,
			Image: "/images/products/crossbody-bag.jpg", IsSale: true,
			Description: "Full-grain leather bag with an adjustable strap.",
		},
		{
			ID: "7", Name: "Everyday Cotton T-Shirt", Category: "fashion",
			Price: money("19.99"), Rating: 4.2, Reviews: 2210,
			Image: "/images/products/tshirt.jpg",
			Description: "Soft organic cotton tee in a regular fit.",
		},
		{
			ID: "8", Name: "Polarized Sunglasses", Category: "fashion",
			Price: money("54.00"), Rating: 4.1, Reviews: 298,
			Image: "/images/products/sunglasses.jpg",
			Description: "Lightweight frames with UV400 polarized lenses.",
		},
		{
			ID: "9", Name: "Ceramic Pour-Over Coffee Set", Category: "home-living",
			Price: money("45.00"), Rating: 4.9, Reviews: 376,
			Image: "/images/products/coffee-set.jpg", IsNew: true,
			Description: "Hand-glazed dripper, carafe and two cups.",
		},
		{
			ID: "10", Name: "Linen Throw Blanket", Category: "home-living",
			Price: money("64.99"), OriginalPrice: was("84.99"), Rating: 4.6, Reviews: 205,
			Image: "/images/products/throw-blanket.jpg", IsSale: true,
			Description: "Stonewashed linen throw, 130 x 170 cm.",
		},
		{
			ID: "11", Name: "Aromatherapy Diffuser", Category: "home-living",
			Price: money("34.50"), Rating: 4.3, Reviews: 918,
			Image: "/images/products/diffuser.jpg",
			Description: "Ultrasonic diffuser with ambient light and auto shut-off.",
		},
		{
			ID: "12", Name: "Cast Iron Skillet 12\"", Category: "home-living",
			Price: money("42.00"), Rating: 4.8, Reviews: 1534,
			Image: "/images/products/skillet.jpg",
			Description: "Pre-seasoned skillet for stovetop, oven and campfire.",
		},
		{
			ID: "13", Name: "Yoga Mat Pro", Category: "sports",
			Price: money("68.00"), Rating: 4.7, Reviews: 822,
			Image: "/images/products/yoga-mat.jpg", IsNew: true,
			Description: "6 mm non-slip mat with alignment lines.",
		},
		{
			ID: "14", Name: "Adjustable Dumbbell Pair", Category: "sports",
			Price: money("199.99"), OriginalPrice: was("249.99"), Rating: 4.5, Reviews: 377,
			Image: "/images/products/dumbbells.jpg", IsSale: true,
			Description: "Quick-select weights from 2.5 to 24 kg per hand.",
		},
		{
			ID: "15", Name: "Trail Running Shoes", Category: "sports",
			Price: money("119.95"), Rating: 4.4, Reviews: 689,
			Image: "/images/products/trail-shoes.jpg",
			Description: "Grippy outsole and breathable mesh upper.",
		},
		{
			ID: "16", Name: "Insulated Water Bottle", Category: "sports",
			Price: money("24.99"), Rating: 4.6, Reviews: 3104,
			Image: "/images/products/water-bottle.jpg",
			Description: "Keeps drinks cold for 24 hours, 750 ml.",
		},
	}
}
