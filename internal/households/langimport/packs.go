// Copyright (c) 2026 Pantrio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package langimport

// packEntry is one category of a language pack: a stable key shared by every
// language and the localized display name. The key is persisted as the
// category's defaultkey, so re-imports and language switches can recognize
// categories they already seeded regardless of how the name was localized.
type packEntry struct {
	Key  string
	Name string
}

// packs holds the built-in category packs, keyed by canonical BCP-47 code.
//
// Slice order is display order: the importer persists the index as the
// category's ordering. Every pack carries the same keys in the same order.
var packs = map[string][]packEntry{
	"de": {
		{Key: "produce", Name: "Obst & Gemüse"},
		{Key: "dairy", Name: "Milchprodukte"},
		{Key: "bakery", Name: "Backwaren"},
		{Key: "meat_fish", Name: "Fleisch & Fisch"},
		{Key: "frozen", Name: "Tiefkühlkost"},
		{Key: "pantry", Name: "Vorräte"},
		{Key: "snacks", Name: "Snacks"},
		{Key: "beverages", Name: "Getränke"},
		{Key: "hygiene", Name: "Körperpflege"},
		{Key: "household", Name: "Haushalt"},
	},
	"en": {
		{Key: "produce", Name: "Fruits & Vegetables"},
		{Key: "dairy", Name: "Dairy"},
		{Key: "bakery", Name: "Bakery"},
		{Key: "meat_fish", Name: "Meat & Fish"},
		{Key: "frozen", Name: "Frozen"},
		{Key: "pantry", Name: "Pantry"},
		{Key: "snacks", Name: "Snacks"},
		{Key: "beverages", Name: "Beverages"},
		{Key: "hygiene", Name: "Personal Care"},
		{Key: "household", Name: "Household"},
	},
	"es": {
		{Key: "produce", Name: "Frutas y verduras"},
		{Key: "dairy", Name: "Lácteos"},
		{Key: "bakery", Name: "Panadería"},
		{Key: "meat_fish", Name: "Carne y pescado"},
		{Key: "frozen", Name: "Congelados"},
		{Key: "pantry", Name: "Despensa"},
		{Key: "snacks", Name: "Aperitivos"},
		{Key: "beverages", Name: "Bebidas"},
		{Key: "hygiene", Name: "Cuidado personal"},
		{Key: "household", Name: "Hogar"},
	},
	"fr": {
		{Key: "produce", Name: "Fruits et légumes"},
		{Key: "dairy", Name: "Produits laitiers"},
		{Key: "bakery", Name: "Boulangerie"},
		{Key: "meat_fish", Name: "Viande et poisson"},
		{Key: "frozen", Name: "Surgelés"},
		{Key: "pantry", Name: "Épicerie"},
		{Key: "snacks", Name: "Collations"},
		{Key: "beverages", Name: "Boissons"},
		{Key: "hygiene", Name: "Hygiène"},
		{Key: "household", Name: "Maison"},
	},
	"it": {
		{Key: "produce", Name: "Frutta e verdura"},
		{Key: "dairy", Name: "Latticini"},
		{Key: "bakery", Name: "Panetteria"},
		{Key: "meat_fish", Name: "Carne e pesce"},
		{Key: "frozen", Name: "Surgelati"},
		{Key: "pantry", Name: "Dispensa"},
		{Key: "snacks", Name: "Snack"},
		{Key: "beverages", Name: "Bevande"},
		{Key: "hygiene", Name: "Cura personale"},
		{Key: "household", Name: "Casa"},
	},
	"nl": {
		{Key: "produce", Name: "Groente & fruit"},
		{Key: "dairy", Name: "Zuivel"},
		{Key: "bakery", Name: "Bakkerij"},
		{Key: "meat_fish", Name: "Vlees & vis"},
		{Key: "frozen", Name: "Diepvries"},
		{Key: "pantry", Name: "Voorraad"},
		{Key: "snacks", Name: "Snacks"},
		{Key: "beverages", Name: "Dranken"},
		{Key: "hygiene", Name: "Verzorging"},
		{Key: "household", Name: "Huishouden"},
	},
	"pt": {
		{Key: "produce", Name: "Frutas e legumes"},
		{Key: "dairy", Name: "Laticínios"},
		{Key: "bakery", Name: "Padaria"},
		{Key: "meat_fish", Name: "Carne e peixe"},
		{Key: "frozen", Name: "Congelados"},
		{Key: "pantry", Name: "Despensa"},
		{Key: "snacks", Name: "Lanches"},
		{Key: "beverages", Name: "Bebidas"},
		{Key: "hygiene", Name: "Higiene"},
		{Key: "household", Name: "Casa"},
	},
	"sv": {
		{Key: "produce", Name: "Frukt & grönt"},
		{Key: "dairy", Name: "Mejeri"},
		{Key: "bakery", Name: "Bageri"},
		{Key: "meat_fish", Name: "Kött & fisk"},
		{Key: "frozen", Name: "Fryst"},
		{Key: "pantry", Name: "Skafferi"},
		{Key: "snacks", Name: "Snacks"},
		{Key: "beverages", Name: "Drycker"},
		{Key: "hygiene", Name: "Hygien"},
		{Key: "household", Name: "Hushåll"},
	},
}
