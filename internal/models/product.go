package models

// Product represents a catalog item as returned by the remote service.
type Product struct {
	Image   string  `json:"image,omitempty"`
	Price   float64 `json:"price"`
	Name    string  `json:"product_name"`
	Type    string  `json:"product_type"`
	TaxRate float64 `json:"tax"`
}

// AddProductResponse is the remote service response to a product submission.
type AddProductResponse struct {
	Message        string  `json:"message"`
	ProductDetails Product `json:"product_details"`
	ProductID      int64   `json:"product_id"`
	Success        bool    `json:"success"`
}
