package domain

import "strconv"

const (
	productIDPrefix = "p_"
	userIDPrefix    = "u_"
)

// NextProductID derives the ID for the next product from the current number
// of products: p_001 through p_009, then p_010, p_011 and so on.
//
// The count and the following insert are not atomic. Two concurrent creations
// can derive the same ID; the unique index on productId rejects the second.
func NextProductID(count int64) string {
	return sequentialID(productIDPrefix, count)
}

// NextUserID applies the NextProductID policy with the u_ prefix.
func NextUserID(count int64) string {
	return sequentialID(userIDPrefix, count)
}

func sequentialID(prefix string, count int64) string {
	if count < 0 {
		count = 0
	}
	pad := "0"
	if count < 9 {
		pad = "00"
	}
	return prefix + pad + strconv.FormatInt(count+1, 10)
}
