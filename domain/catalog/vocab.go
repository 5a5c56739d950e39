package catalog

import "ecothread/domain/core"

// ClothingType is the garment class of an item
type ClothingType string

const (
	TypeTShirt  ClothingType = "T-Shirt"
	TypeJeans   ClothingType = "Jeans"
	TypeDress   ClothingType = "Dress"
	TypeJacket  ClothingType = "Jacket"
	TypeSweater ClothingType = "Sweater"
	TypeShirt   ClothingType = "Shirt"
)

// Material is the primary fabric of an item
type Material string

const (
	MaterialOrganicCotton      Material = "Organic Cotton"
	MaterialRecycledCotton     Material = "Recycled Cotton"
	MaterialConventionalCotton Material = "Conventional Cotton"
	MaterialHemp               Material = "Hemp"
	MaterialLinen              Material = "Linen"
	MaterialPolyester          Material = "Polyester"
	MaterialNylon              Material = "Nylon"
	MaterialWool               Material = "Wool"
)

// ProductionMethod is how an item was manufactured
type ProductionMethod string

const (
	MethodConventional ProductionMethod = "Conventional"
	MethodOrganic      ProductionMethod = "Organic"
	MethodRecycled     ProductionMethod = "Recycled"
	MethodFairTrade    ProductionMethod = "Fair Trade"
)

// ClothingTypes lists the closed vocabulary of garment classes
var ClothingTypes = []ClothingType{
	TypeTShirt, TypeJeans, TypeDress, TypeJacket, TypeSweater, TypeShirt,
}

// Materials lists the closed vocabulary of fabrics
var Materials = []Material{
	MaterialOrganicCotton, MaterialRecycledCotton, MaterialConventionalCotton,
	MaterialHemp, MaterialLinen, MaterialPolyester, MaterialNylon, MaterialWool,
}

// ProductionMethods lists the closed vocabulary of manufacturing methods
var ProductionMethods = []ProductionMethod{
	MethodConventional, MethodOrganic, MethodRecycled, MethodFairTrade,
}

// sustainableMaterials is the fixed set behind the material_sustainable flag
var sustainableMaterials = map[Material]bool{
	MaterialOrganicCotton:  true,
	MaterialRecycledCotton: true,
	MaterialHemp:           true,
	MaterialLinen:          true,
}

// IsSustainableMaterial reports whether the material belongs to the fixed
// sustainable set (organic cotton, recycled cotton, hemp, linen).
func IsSustainableMaterial(m Material) bool {
	return sustainableMaterials[m]
}

// ParseClothingType validates a label against the closed vocabulary
func ParseClothingType(s string) (ClothingType, error) {
	for _, ct := range ClothingTypes {
		if string(ct) == s {
			return ct, nil
		}
	}
	return "", core.NewUnknownCategoryError("clothing_type", s)
}

// ParseMaterial validates a label against the closed vocabulary
func ParseMaterial(s string) (Material, error) {
	for _, m := range Materials {
		if string(m) == s {
			return m, nil
		}
	}
	return "", core.NewUnknownCategoryError("material", s)
}

// ParseProductionMethod validates a label against the closed vocabulary
func ParseProductionMethod(s string) (ProductionMethod, error) {
	for _, pm := range ProductionMethods {
		if string(pm) == s {
			return pm, nil
		}
	}
	return "", core.NewUnknownCategoryError("production_method", s)
}
