package catalog

// Upsell is the fixed list of add-ons offered inside the cart.
func Upsell() []Product {
	out := make([]Product, len(upsell))
	copy(out, upsell)
	return out
}

var upsell = []Product{
	{ID: "add-001", Title: "Greeting card", Price: 0, Img: "assets/images/izobr/cert-1-1.jpg", Href: "/addition.html?id=add-001", Excerpt: "Hand-written message"},
	{ID: "add-002", Title: "Transport box with water", Price: 400, Img: "assets/images/izobr/cert-1.jpg", Href: "/addition.html?id=add-002", Excerpt: "Keeps flowers fresh on the road"},
	{ID: "add-003", Title: "Pruning shears", Price: 700, Img: "assets/images/izobr/cert-2-2.jpg", Href: "/addition.html?id=add-003", Excerpt: "Flower care"},
	{ID: "add-004", Title: "Glass vase", Price: 1200, Img: "assets/images/izobr/cert-2.jpg", Href: "/addition.html?id=add-004", Excerpt: "Minimalist"},
}
