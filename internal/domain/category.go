package domain

// Category is the closed set of product categories.
type Category string

const (
	CategoryElectronics      Category = "Electronics"
	CategoryFashion          Category = "Fashion"
	CategoryHomeKitchen      Category = "Home and Kitchen"
	CategoryBeautyPersonal   Category = "Beauty and Personal Care"
	CategoryHealthWellness   Category = "Health and Wellness"
	CategoryToysGames        Category = "Toys and Games"
	CategoryBooksMedia       Category = "Books and Media"
	CategorySportsOutdoors   Category = "Sports and Outdoors"
	CategoryGroceriesGourmet Category = "Groceries and Gourmet Food"
	CategoryJewelryWatches   Category = "Jewelry and Watches"
	CategoryBabyMaternity    Category = "Baby and Maternity"
	CategoryOfficeSupplies   Category = "Office Supplies"
)

var categories = []Category{
	CategoryElectronics,
	CategoryFashion,
	CategoryHomeKitchen,
	CategoryBeautyPersonal,
	CategoryHealthWellness,
	CategoryToysGames,
	CategoryBooksMedia,
	CategorySportsOutdoors,
	CategoryGroceriesGourmet,
	CategoryJewelryWatches,
	CategoryBabyMaternity,
	CategoryOfficeSupplies,
}

// Categories returns every valid category in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Valid reports whether c is one of the known categories. Matching is exact.
func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory returns s as a Category when it names a known category.
func ParseCategory(s string) (Category, bool) {
	c := Category(s)
	return c, c.Valid()
}
