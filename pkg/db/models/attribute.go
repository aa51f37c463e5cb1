package models

import "github.com/google/uuid"

// Attribute is a shared characteristic definition, e.g. "Screen size" with
// unit "inch", grouped under a display section such as "Display". Values
// live on ProductAttribute.
type Attribute struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name       string     `gorm:"column:name;not null;uniqueIndex:idx_attributes_group_name"`
	Unit       string     `gorm:"column:unit;not null;default:''"`
	Group      string     `gorm:"column:group_name;not null;default:'';uniqueIndex:idx_attributes_group_name"`
	CategoryID *uuid.UUID `gorm:"column:category_id;type:uuid"`
}

// ProductAttribute binds a value to one product for one attribute.
type ProductAttribute struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID   uuid.UUID  `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_product_attributes_product_attribute"`
	AttributeID uuid.UUID  `gorm:"column:attribute_id;type:uuid;not null;uniqueIndex:idx_product_attributes_product_attribute"`
	Value       string     `gorm:"column:value;not null"`
	Attribute   *Attribute `gorm:"foreignKey:AttributeID"`
}
