package services

import "strings"

// CategoryDefinition links one OSM shop tag to its Google Places type, the
// description that gets embedded, and fallback keywords (several languages).
type CategoryDefinition struct {
	OSMTag      string
	GoogleType  string
	StoreType   string
	Description string
	Keywords    []string
}

// DefaultCategoryTags is returned when neither AI nor keywords find a match.
var DefaultCategoryTags = []string{"shop=department_store", "shop=variety_store"}

// --- STATIC CATEGORY TABLE ---
var CategoryTable = []CategoryDefinition{
	{
		OSMTag: "shop=electronics", GoogleType: "electronics_store", StoreType: "electronics",
		Description: "Electronics store selling TVs, headphones, cameras, chargers, cables and consumer electronics",
		Keywords:    []string{"tv", "television", "headphone", "earbud", "camera", "charger", "cable", "speaker", "laptop", "console", "elettronica", "fernseher", "kopfhörer"},
	},
	{
		OSMTag: "shop=mobile_phone", GoogleType: "electronics_store", StoreType: "mobile_phone",
		Description: "Mobile phone shop selling smartphones, phone cases and accessories",
		Keywords:    []string{"iphone", "smartphone", "phone", "galaxy", "pixel", "telefono", "cellulare", "handy"},
	},
	{
		OSMTag: "shop=computer", GoogleType: "electronics_store", StoreType: "computer",
		Description: "Computer shop selling laptops, desktops, keyboards, monitors and PC parts",
		Keywords:    []string{"keyboard", "mouse", "monitor", "ssd", "graphics card", "gpu", "pc", "computer", "tastiera"},
	},
	{
		OSMTag: "shop=chemist", GoogleType: "drugstore", StoreType: "chemist",
		Description: "Drugstore selling toiletries, cosmetics, shampoo and household hygiene products",
		Keywords:    []string{"shampoo", "toothpaste", "deodorant", "soap", "cosmetic", "makeup", "drogerie"},
	},
	{
		OSMTag: "amenity=pharmacy", GoogleType: "pharmacy", StoreType: "pharmacy",
		Description: "Pharmacy selling medicine, painkillers, vitamins and health products",
		Keywords:    []string{"aspirin", "ibuprofen", "paracetamol", "medicine", "vitamin", "farmacia", "apotheke", "plaster"},
	},
	{
		OSMTag: "shop=supermarket", GoogleType: "supermarket", StoreType: "supermarket",
		Description: "Supermarket selling groceries, food, drinks and everyday household goods",
		Keywords:    []string{"milk", "bread", "pasta", "coffee", "food", "snack", "beer", "wine", "latte", "supermercato"},
	},
	{
		OSMTag: "shop=hardware", GoogleType: "hardware_store", StoreType: "hardware",
		Description: "Hardware store selling tools, screws, paint, drills and DIY supplies",
		Keywords:    []string{"drill", "screw", "hammer", "paint", "tool", "nail", "ferramenta", "baumarkt", "werkzeug"},
	},
	{
		OSMTag: "shop=doityourself", GoogleType: "home_goods_store", StoreType: "doityourself",
		Description: "DIY home improvement store selling building materials, garden and home repair supplies",
		Keywords:    []string{"lumber", "tiles", "garden hose", "brico", "fai da te"},
	},
	{
		OSMTag: "shop=sports", GoogleType: "store", StoreType: "sports",
		Description: "Sports shop selling sportswear, running shoes, bicycles accessories and fitness equipment",
		Keywords:    []string{"running shoes", "sneaker", "football", "tennis", "yoga", "dumbbell", "sport"},
	},
	{
		OSMTag: "shop=clothes", GoogleType: "clothing_store", StoreType: "clothes",
		Description: "Clothing store selling shirts, jeans, jackets, dresses and fashion",
		Keywords:    []string{"shirt", "jeans", "jacket", "dress", "t-shirt", "abbigliamento", "kleidung"},
	},
	{
		OSMTag: "shop=shoes", GoogleType: "shoe_store", StoreType: "shoes",
		Description: "Shoe store selling boots, sandals and footwear",
		Keywords:    []string{"shoe", "boot", "sandal", "scarpe", "schuhe"},
	},
	{
		OSMTag: "shop=books", GoogleType: "book_store", StoreType: "books",
		Description: "Bookstore selling books, novels, comics and magazines",
		Keywords:    []string{"book", "novel", "comic", "libro", "buch"},
	},
	{
		OSMTag: "shop=toys", GoogleType: "store", StoreType: "toys",
		Description: "Toy store selling games, lego, puzzles and children's toys",
		Keywords:    []string{"lego", "toy", "puzzle", "doll", "giocattolo", "spielzeug"},
	},
	{
		OSMTag: "shop=pet", GoogleType: "pet_store", StoreType: "pet",
		Description: "Pet shop selling pet food, dog and cat supplies",
		Keywords:    []string{"dog food", "cat food", "pet", "leash", "aquarium"},
	},
	{
		OSMTag: "shop=furniture", GoogleType: "furniture_store", StoreType: "furniture",
		Description: "Furniture store selling sofas, tables, chairs, beds and home furnishing",
		Keywords:    []string{"sofa", "table", "chair", "bed", "mattress", "wardrobe", "mobili", "möbel"},
	},
	{
		OSMTag: "shop=stationery", GoogleType: "store", StoreType: "stationery",
		Description: "Stationery shop selling pens, notebooks, paper and office supplies",
		Keywords:    []string{"pen", "notebook", "paper", "pencil", "cartoleria"},
	},
	{
		OSMTag: "shop=cosmetics", GoogleType: "store", StoreType: "cosmetics",
		Description: "Cosmetics and perfume shop selling perfume, skincare and beauty products",
		Keywords:    []string{"perfume", "lipstick", "skincare", "profumo", "parfum"},
	},
	{
		OSMTag: "shop=department_store", GoogleType: "department_store", StoreType: "department_store",
		Description: "Department store selling a wide range of general merchandise",
		Keywords:    []string{},
	},
	{
		OSMTag: "shop=variety_store", GoogleType: "store", StoreType: "variety_store",
		Description: "Variety store selling inexpensive household items and general goods",
		Keywords:    []string{},
	},
}

// MatchKeywordCategories is the deterministic fallback: every category whose
// keyword is a substring of the normalized product name, in table order,
// capped at limit.
func MatchKeywordCategories(normalizedName string, limit int) []string {
	tags := []string{}
	for _, c := range CategoryTable {
		for _, kw := range c.Keywords {
			if strings.Contains(normalizedName, kw) {
				tags = append(tags, c.OSMTag)
				break
			}
		}
		if len(tags) == limit {
			break
		}
	}
	return tags
}

// LookupCategory finds the definition for an OSM tag.
func LookupCategory(osmTag string) (CategoryDefinition, bool) {
	for _, c := range CategoryTable {
		if c.OSMTag == osmTag {
			return c, true
		}
	}
	return CategoryDefinition{}, false
}

// GoogleTypesFor maps OSM tags to distinct Google Places types, in order.
func GoogleTypesFor(osmTags []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, tag := range osmTags {
		c, ok := LookupCategory(tag)
		if !ok || c.GoogleType == "" || seen[c.GoogleType] {
			continue
		}
		seen[c.GoogleType] = true
		out = append(out, c.GoogleType)
	}
	return out
}

// StoreTypeFor returns the coarse store type of the first requested tag that
// maps to googleType, or googleType itself when none does.
func StoreTypeFor(osmTags []string, googleType string) string {
	for _, tag := range osmTags {
		if c, ok := LookupCategory(tag); ok && c.GoogleType == googleType {
			return c.StoreType
		}
	}
	return googleType
}
