package domain

// Rating is a review score. It is stored and transmitted as the strings
// "1" through "5".
type Rating string

const (
	RatingOne   Rating = "1"
	RatingTwo   Rating = "2"
	RatingThree Rating = "3"
	RatingFour  Rating = "4"
	RatingFive  Rating = "5"
)

// Valid reports whether r is one of "1".."5".
func (r Rating) Valid() bool {
	switch r {
	case RatingOne, RatingTwo, RatingThree, RatingFour, RatingFive:
		return true
	}
	return false
}

// ParseRating returns s as a Rating when it is one of "1".."5".
func ParseRating(s string) (Rating, bool) {
	r := Rating(s)
	return r, r.Valid()
}

// Review is embedded in its product and has no lifecycle of its own. The ID
// is assigned by the store when the review is appended.
type Review struct {
	ID            string `json:"id"`
	Rating        Rating `json:"rating"`
	ReviewMessage string `json:"reviewMessage"`
}

// FlattenedReview is one entry of the global review feed.
type FlattenedReview struct {
	ProductName string   `json:"productName"`
	Category    Category `json:"category"`
	Review      Review   `json:"review"`
}

// FlattenReviews maps every embedded review of products to a feed entry
// carrying its product's name and category. Product order and per-product
// review order are preserved. The result is never nil.
func FlattenReviews(products []Product) []FlattenedReview {
	n := 0
	for i := range products {
		n += len(products[i].Reviews)
	}

	feed := make([]FlattenedReview, 0, n)
	for i := range products {
		p := &products[i]
		for _, r := range p.Reviews {
			feed = append(feed, FlattenedReview{
				ProductName: p.Name,
				Category:    p.Category,
				Review:      r,
			})
		}
	}
	return feed
}
