package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductSpecs holds the optional hardware spec fields shown on a product
// page. All fields are optional; absent values are omitted from the document.
type ProductSpecs struct {
	Processor    string `bson:"processor,omitempty" json:"processor,omitempty"`
	RAM          string `bson:"ram,omitempty" json:"ram,omitempty"`
	Storage      string `bson:"storage,omitempty" json:"storage,omitempty"`
	Display      string `bson:"display,omitempty" json:"display,omitempty"`
	Camera       string `bson:"camera,omitempty" json:"camera,omitempty"`
	Battery      string `bson:"battery,omitempty" json:"battery,omitempty"`
	GraphicsCard string `bson:"graphicsCard,omitempty" json:"graphicsCard,omitempty"`
	OS           string `bson:"os,omitempty" json:"os,omitempty"`
	Color        string `bson:"color,omitempty" json:"color,omitempty"`
}

type Product struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Brand        string             `bson:"brand" json:"brand"`
	Description  string             `bson:"description" json:"description"`
	Price        float64            `bson:"price" json:"price"`
	Images       []string           `bson:"images" json:"images"`
	Category     string             `bson:"category" json:"category"`
	SubCategory  string             `bson:"subCategory" json:"subCategory"`
	CountInStock int                `bson:"countInStock" json:"countInStock"`
	Specs        ProductSpecs       `bson:"specs,omitempty" json:"specs,omitempty"`

	// Rating and NumReviews are derived; only the review aggregation path
	// writes them.
	Rating     float64 `bson:"rating" json:"rating"`
	NumReviews int     `bson:"numReviews" json:"numReviews"`

	CreatedBy primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
