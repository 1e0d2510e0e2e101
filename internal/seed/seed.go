// Package seed provides the demo catalog and user every new session starts
// with. Each call returns fresh values so callers may mutate them freely.
package seed

import "github.com/suleman231/provisimarket-hub/internal/domain"

// CurrentUserID is the id of the demo merchant.
const CurrentUserID = "usr-8821"

// User returns the demo merchant.
func User() domain.User {
	return domain.User{
		ID:     CurrentUserID,
		Name:   "Maria Santos",
		Role:   domain.RoleMerchant,
		Email:  "maria@sunnyside.com",
		Avatar: "https://api.dicebear.com/7.x/avataaars/svg?seed=Maria",
	}
}

// Cart returns an empty cart.
func Cart() domain.Cart {
	return domain.Cart{Lines: []domain.CartLine{}}
}

func quantity(v float64) *float64 { return &v }

// Stores returns the three demo stores and their products.
func Stores() []domain.Store {
	return []domain.Store{
		{
			ID:        "s1",
			Name:      "Sunnyside Grocers",
			OwnerID:   CurrentUserID,
			OwnerName: "Maria Santos",
			Address:   "123 Market St, Downtown",
			Location:  domain.Coordinates{Lat: 40.7128, Lng: -74.0060},
			Phone:     "555-0101",
			Image:     "https://picsum.photos/seed/store1/600/400",
			Rating:    4.8,
			Tags:      []string{"Fresh", "Organic", "Local"},
			Products: []domain.Product{
				{
					ID:          "p1",
					Name:        "Farm Fresh Eggs",
					Price:       4.50,
					Unit:        "Dozen",
					Category:    domain.CategoryDairy,
					Description: "Organic brown eggs from free-range chickens.",
					Image:       "https://picsum.photos/seed/eggs/300/200",
					Gallery:     []string{"https://picsum.photos/seed/eggs-alt/300/200"},
					InStock:     true,
					Quantity:    quantity(50),
					Rating:      4.9,
					RatingCount: 124,
				},
				{
					ID:          "p2",
					Name:        "Red Gala Apples",
					Price:       3.99,
					Unit:        "kg",
					Category:    domain.CategoryProduce,
					Description: "Sweet and crunchy gala apples.",
					Image:       "https://picsum.photos/seed/apple/300/200",
					Gallery:     []string{},
					InStock:     true,
					Quantity:    quantity(120),
					Rating:      4.7,
					RatingCount: 88,
				},
			},
		},
		{
			ID:        "s2",
			Name:      "Express Pantry",
			OwnerID:   "usr-9942",
			OwnerName: "John Chen",
			Address:   "456 Commerce Rd, Uptown",
			Location:  domain.Coordinates{Lat: 40.7589, Lng: -73.9851},
			Phone:     "555-0202",
			Image:     "https://picsum.photos/seed/store2/600/400",
			Rating:    4.5,
			Tags:      []string{"Quick", "Essential", "24/7"},
			Products: []domain.Product{
				{
					ID:          "p3",
					Name:        "Whole Wheat Bread",
					Price:       2.80,
					Unit:        "Loaf",
					Category:    domain.CategoryGrains,
					Description: "Freshly baked daily whole wheat bread.",
					Image:       "https://picsum.photos/seed/bread/300/200",
					Gallery:     []string{},
					InStock:     true,
					Quantity:    quantity(15),
					Rating:      4.2,
					RatingCount: 56,
				},
				{
					ID:          "p4",
					Name:        "Pasta Sauce",
					Price:       1.50,
					Unit:        "Jar",
					Category:    domain.CategoryCanned,
					Description: "Classic Italian style tomato sauce.",
					Image:       "https://picsum.photos/seed/sauce/300/200",
					Gallery:     []string{},
					InStock:     true,
					Quantity:    quantity(45),
					Rating:      4.5,
					RatingCount: 34,
				},
			},
		},
		{
			ID:        "s3",
			Name:      "The Corner Provisions",
			OwnerID:   "usr-1105",
			OwnerName: "Sarah Jenkins",
			Address:   "789 Willow Ln, Westside",
			Location:  domain.Coordinates{Lat: 40.7306, Lng: -73.9352},
			Phone:     "555-0303",
			Image:     "https://picsum.photos/seed/store3/600/400",
			Rating:    4.2,
			Tags:      []string{"Convenience", "Friendly", "Cheap"},
			Products: []domain.Product{
				{
					ID:          "p5",
					Name:        "Instant Coffee",
					Price:       5.25,
					Unit:        "Tin",
					Category:    domain.CategoryBeverages,
					Description: "Rich and smooth morning pick-me-up.",
					Image:       "https://picsum.photos/seed/coffee/300/200",
					Gallery:     []string{},
					InStock:     true,
					Quantity:    quantity(30),
					Rating:      4.0,
					RatingCount: 22,
				},
			},
		},
	}
}
