// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

// Package predict is the client side of the bestseller classifier: the
// engineered feature vector, the label mapping, an HTTP client and a
// fallback used when no classifier is reachable.
package predict

import "math"

// Features is the engineered input of the bestseller classifier. Field
// order matches the order the model was trained with.
type Features struct {
	Rating                float64 `json:"rating" validate:"gte=0,lte=5"`
	Discount              float64 `json:"discount" validate:"gte=0,lte=1"`
	LogNumReviews         float64 `json:"log_num_reviews" validate:"gte=0"`
	LogNumStudents        float64 `json:"log_num_students" validate:"gte=0"`
	LogPrice              float64 `json:"log_price" validate:"gte=0"`
	LogTotalLengthMinutes float64 `json:"log_total_length_minutes" validate:"gte=0"`
	SqrtSections          float64 `json:"sqrt_sections" validate:"gte=0"`
	EffectivePrice        float64 `json:"effective_price" validate:"gte=0"`
	PopularityScore       float64 `json:"popularity_score" validate:"gte=0"`
	PricePerHour          float64 `json:"price_per_hour" validate:"gte=0"`
	DiscountCategory      int     `json:"discount_category" validate:"gte=0,lte=2"`
}

// RawCourse is the unengineered description of a course. Discount is a
// percentage in [0, 100] and DurationMinutes the total video length.
type RawCourse struct {
	Price           float64 `json:"price" validate:"gte=0"`
	Rating          float64 `json:"rating" validate:"gte=0,lte=5"`
	NumStudents     int     `json:"num_students" validate:"gte=0"`
	NumReviews      int     `json:"num_reviews" validate:"gte=0"`
	DurationMinutes float64 `json:"duration" validate:"gte=1"`
	Discount        float64 `json:"discount" validate:"gte=0,lte=100"`
	Lectures        int     `json:"lectures" validate:"gte=0"`
	Sections        int     `json:"sections" validate:"gte=0"`
}

// EngineerFeatures derives the classifier features from a raw course.
// Counts, price and duration are floored at 1 before the log and sqrt
// transforms so the features stay finite.
func EngineerFeatures(c RawCourse) Features {
	discount := c.Discount / 100

	duration := math.Max(1, c.DurationMinutes)

	return Features{
		Rating:                c.Rating,
		Discount:              discount,
		LogNumReviews:         math.Log(math.Max(1, float64(c.NumReviews))),
		LogNumStudents:        math.Log(math.Max(1, float64(c.NumStudents))),
		LogPrice:              math.Log(math.Max(1, c.Price)),
		LogTotalLengthMinutes: math.Log(duration),
		SqrtSections:          math.Sqrt(math.Max(1, float64(c.Sections))),
		EffectivePrice:        c.Price * (1 - discount),
		PopularityScore:       c.Rating * float64(c.NumStudents) / 2,
		PricePerHour:          c.Price / (duration / 60),
		DiscountCategory:      DiscountCategory(c.Discount),
	}
}

// DiscountCategory buckets a discount percentage: up to 30% is 0, up to
// 60% is 1, anything higher is 2.
func DiscountCategory(percent float64) int {
	switch {
	case percent > 60:
		return 2
	case percent > 30:
		return 1
	default:
		return 0
	}
}
