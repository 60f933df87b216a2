package catalog

import (
	"github.com/fjod/go_pos/internal/domain"
	"github.com/shopspring/decimal"
)

func product(id, name, price, category string) domain.Product {
	return domain.Product{
		ID:       id,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Category: category,
		Image:    "assets/" + id + ".png",
	}
}

// Defaults returns the fixed WoofCrafts product list. These always win over
// products with the same id from any other source.
func Defaults() []domain.Product {
	return []domain.Product{
		product("prod_charm_3for8", "3 Charms", "8.00", "tags"),
		product("prod_nfc_additional", "Additional NFC (5 SGD)", "5.00", "tags"),
		product("prod_charm_takehome", "Charm Take Home Already", "0.00", "tags"),
		product("prod_charm_reserved", "Charm Reserved", "0.00", "tags"),
		product("prod_big_alphabet_tag", "Big Alphabet Tag", "22.00", "tags"),
		product("prod_christmas_tag_brown", "Christmas Tag - Brown", "25.00", "tags"),
		product("prod_christmas_tag_green", "Christmas Tag - Green", "25.00", "tags"),
		product("prod_big_identification_tag", "Big Identification Tag", "35.00", "tags"),
		product("prod_photo_stand", "Photo Stand", "10.00", "accessories"),
		product("prod_christmas_socks_ornament", "Christmas Socks Ornament", "20.00", "accessories"),
		product("prod_small_alphabet_tag", "Small Alphabet Tag", "20.00", "tags"),
		product("prod_small_identification_tag", "Small Identification Tag", "30.00", "tags"),
		product("prod_charms", "Charms", "3.00", "tags"),
		product("prod_christmas_photo_frame", "Christmas Photo Frame", "15.00", "accessories"),
	}
}

// IsFixed reports whether id belongs to a built-in product.
func IsFixed(id string) bool {
	for _, p := range Defaults() {
		if p.ID == id {
			return true
		}
	}
	return false
}
