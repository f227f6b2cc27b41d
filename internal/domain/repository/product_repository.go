package repository

import "github.com/jhoicas/pos-api/internal/domain/entity"

// ProductRepository define el puerto de persistencia para Product (DIP).
// La búsqueda por código de barras resuelve cualquiera de los códigos del producto.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetByBarcode(code string) (*entity.Product, error)
	Update(product *entity.Product) error
	List(limit, offset int) ([]*entity.Product, error)
	Delete(id string) error
}
