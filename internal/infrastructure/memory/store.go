package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// Store es una implementación en memoria de todos los puertos de persistencia
// más los TxRunner. La usan los tests de casos de uso para ejercitar la
// semántica transaccional sin PostgreSQL: Run/RunSale toman un lock global
// (serializa transacciones, como el bloqueo de fila en la BD) y hacen rollback
// restaurando un snapshot si el callback falla.
type Store struct {
	mu sync.Mutex
	// promoMu guarda solo el mapa de promociones. Va aparte de mu porque el
	// procesador de ventas consulta promociones con la tx abierta (mu tomado)
	// y mu no es reentrante.
	promoMu    sync.Mutex
	products   map[string]*entity.Product
	batches    map[string]*entity.Batch
	movements  []*entity.StockMovement
	sales      map[string]*entity.Sale
	saleItems  map[string]*entity.SaleItem
	promotions map[string]*entity.Promotion
	expenses   []*entity.Expense
	purchases  []*entity.Purchase
}

var _ inventory.TxRunner = (*Store)(nil)
var _ sales.SaleTxRunner = (*Store)(nil)

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{
		products:   make(map[string]*entity.Product),
		batches:    make(map[string]*entity.Batch),
		sales:      make(map[string]*entity.Sale),
		saleItems:  make(map[string]*entity.SaleItem),
		promotions: make(map[string]*entity.Promotion),
	}
}

// ─── TxRunner ────────────────────────────────────────────────────────────────

// Run ejecuta fn bajo el lock global con repos sin lock propio; si fn falla se
// restaura el snapshot (nada de la tx queda visible).
func (s *Store) Run(ctx context.Context, fn func(
	batchRepo repository.BatchRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot()
	if err := fn(&txBatchRepo{s}, &txMovementRepo{s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// RunSale igual que Run pero con el repositorio de ventas incluido.
func (s *Store) RunSale(ctx context.Context, fn func(
	batchRepo repository.BatchRepository,
	movRepo repository.StockMovementRepository,
	saleRepo repository.SaleRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot()
	if err := fn(&txBatchRepo{s}, &txMovementRepo{s}, &txSaleRepo{s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type storeSnapshot struct {
	batches   map[string]*entity.Batch
	movements []*entity.StockMovement
	sales     map[string]*entity.Sale
	saleItems map[string]*entity.SaleItem
}

func (s *Store) snapshot() storeSnapshot {
	snap := storeSnapshot{
		batches:   make(map[string]*entity.Batch, len(s.batches)),
		movements: append([]*entity.StockMovement(nil), s.movements...),
		sales:     make(map[string]*entity.Sale, len(s.sales)),
		saleItems: make(map[string]*entity.SaleItem, len(s.saleItems)),
	}
	for id, b := range s.batches {
		cp := *b
		snap.batches[id] = &cp
	}
	for id, sale := range s.sales {
		cp := *sale
		snap.sales[id] = &cp
	}
	for id, item := range s.saleItems {
		cp := *item
		snap.saleItems[id] = &cp
	}
	return snap
}

func (s *Store) restore(snap storeSnapshot) {
	s.batches = snap.batches
	s.movements = snap.movements
	s.sales = snap.sales
	s.saleItems = snap.saleItems
}

// ─── Lotes ───────────────────────────────────────────────────────────────────

type txBatchRepo struct{ s *Store }

func (r *txBatchRepo) Create(batch *entity.Batch) error {
	cp := *batch
	r.s.batches[batch.ID] = &cp
	return nil
}

func (r *txBatchRepo) GetByID(id string) (*entity.Batch, error) {
	b, ok := r.s.batches[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

// GetForUpdate: el lock global del runner ya serializa; devuelve copia.
func (r *txBatchRepo) GetForUpdate(id string) (*entity.Batch, error) {
	return r.GetByID(id)
}

func (r *txBatchRepo) GetSingleForUpdate(productID string) (*entity.Batch, error) {
	list := r.s.batchesOfProduct(productID)
	if len(list) == 0 {
		return nil, nil
	}
	cp := *list[0]
	return &cp, nil
}

func (r *txBatchRepo) Update(batch *entity.Batch) error {
	if _, ok := r.s.batches[batch.ID]; !ok {
		return domain.ErrBatchNotFound
	}
	cp := *batch
	r.s.batches[batch.ID] = &cp
	return nil
}

func (r *txBatchRepo) ListByProduct(productID string) ([]*entity.Batch, error) {
	list := r.s.batchesOfProduct(productID)
	out := make([]*entity.Batch, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		cp := *list[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *txBatchRepo) Delete(id string) error {
	if _, ok := r.s.batches[id]; !ok {
		return domain.ErrBatchNotFound
	}
	for _, item := range r.s.saleItems {
		if item.BatchID == id {
			return domain.ErrConflict
		}
	}
	delete(r.s.batches, id)
	return nil
}

// batchesOfProduct devuelve los lotes de un producto en orden de creación.
func (s *Store) batchesOfProduct(productID string) []*entity.Batch {
	var list []*entity.Batch
	for _, b := range s.batches {
		if b.ProductID == productID {
			list = append(list, b)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list
}

// BatchRepo adaptador con lock propio para uso fuera de transacciones.
type BatchRepo struct{ s *Store }

// NewBatchRepository construye el adaptador.
func NewBatchRepository(s *Store) *BatchRepo { return &BatchRepo{s} }

var _ repository.BatchRepository = (*BatchRepo)(nil)

func (r *BatchRepo) Create(batch *entity.Batch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&txBatchRepo{r.s}).Create(batch)
}

func (r *BatchRepo) GetByID(id string) (*entity.Batch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&txBatchRepo{r.s}).GetByID(id)
}

func (r *BatchRepo) GetForUpdate(id string) (*entity.Batch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&txBatchRepo{r.s}).GetForUpdate(id)
}

func (r *BatchRepo) GetSingleForUpdate(productID string) (*entity.Batch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&txBatchRepo{r.s}).GetSingleForUpdate(productID)
}

func (r *BatchRepo) Update(batch *entity.Batch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&txBatchRepo{r.s}).Update(batch)
}

func (r *BatchRepo) ListByProduct(productID string) ([]*entity.Batch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&txBatchRepo{r.s}).ListByProduct(productID)
}

func (r *BatchRepo) Delete(id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&txBatchRepo{r.s}).Delete(id)
}

// ─── Ledger ──────────────────────────────────────────────────────────────────

type txMovementRepo struct{ s *Store }

func (r *txMovementRepo) Create(movement *entity.StockMovement) error {
	cp := *movement
	r.s.movements = append(r.s.movements, &cp)
	return nil
}

func (r *txMovementRepo) ListByBatch(batchID string, limit, offset int) ([]*entity.StockMovement, error) {
	return r.s.filterMovements(func(m *entity.StockMovement) bool {
		return m.BatchID == batchID
	}, limit, offset), nil
}

func (r *txMovementRepo) ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	return r.s.filterMovements(func(m *entity.StockMovement) bool {
		if m.ProductID != productID {
			return false
		}
		if from != nil && m.CreatedAt.Before(*from) {
			return false
		}
		if to != nil && m.CreatedAt.After(*to) {
			return false
		}
		return true
	}, limit, offset), nil
}

func (r *txMovementRepo) ListByDateRange(from, to time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	return r.s.filterMovements(func(m *entity.StockMovement) bool {
		return !m.CreatedAt.Before(from) && !m.CreatedAt.After(to)
	}, limit, offset), nil
}

func (s *Store) filterMovements(keep func(*entity.StockMovement) bool, limit, offset int) []*entity.StockMovement {
	var all []*entity.StockMovement
	for i := len(s.movements) - 1; i >= 0; i-- { // más recientes primero
		if keep(s.movements[i]) {
			cp := *s.movements[i]
			all = append(all, &cp)
		}
	}
	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}

// MovementRepo adaptador con lock propio para uso fuera de transacciones.
type MovementRepo struct{ s *Store }

// NewMovementRepository construye el adaptador.
func NewMovementRepository(s *Store) *MovementRepo { return &MovementRepo{s} }

var _ repository.StockMovementRepository = (*MovementRepo)(nil)

func (r *MovementRepo) Create(movement *entity.StockMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&txMovementRepo{r.s}).Create(movement)
}

func (r *MovementRepo) ListByBatch(batchID string, limit, offset int) ([]*entity.StockMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&txMovementRepo{r.s}).ListByBatch(batchID, limit, offset)
}

func (r *MovementRepo) ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&txMovementRepo{r.s}).ListByProduct(productID, from, to, limit, offset)
}

func (r *MovementRepo) ListByDateRange(from, to time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&txMovementRepo{r.s}).ListByDateRange(from, to, limit, offset)
}

// ─── Ventas ──────────────────────────────────────────────────────────────────

type txSaleRepo struct{ s *Store }

func (r *txSaleRepo) Create(sale *entity.Sale) error {
	header := *sale
	header.Items = nil
	r.s.sales[sale.ID] = &header
	for _, item := range sale.Items {
		cp := *item
		r.s.saleItems[item.ID] = &cp
	}
	return nil
}

func (r *txSaleRepo) GetByID(id string) (*entity.Sale, error) {
	sale, ok := r.s.sales[id]
	if !ok {
		return nil, nil
	}
	cp := *sale
	cp.Items = r.s.itemsOfSale(id)
	return &cp, nil
}

func (r *txSaleRepo) GetItemByID(itemID string) (*entity.SaleItem, error) {
	item, ok := r.s.saleItems[itemID]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

func (r *txSaleRepo) GetItemForUpdate(itemID string) (*entity.SaleItem, error) {
	return r.GetItemByID(itemID)
}

func (r *txSaleRepo) UpdateItemReturned(itemID string, returnedQuantity int64) error {
	item, ok := r.s.saleItems[itemID]
	if !ok {
		return domain.ErrSaleItemNotFound
	}
	item.ReturnedQuantity = returnedQuantity
	return nil
}

func (r *txSaleRepo) CountItemsByBatch(batchID string) (int64, error) {
	var count int64
	for _, item := range r.s.saleItems {
		if item.BatchID == batchID {
			count++
		}
	}
	return count, nil
}

func (r *txSaleRepo) ListByDateRange(from, to time.Time, limit, offset int) ([]*entity.Sale, error) {
	var list []*entity.Sale
	for id, sale := range r.s.sales {
		if sale.CreatedAt.Before(from) || sale.CreatedAt.After(to) {
			continue
		}
		cp := *sale
		cp.Items = r.s.itemsOfSale(id)
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

func (s *Store) itemsOfSale(saleID string) []*entity.SaleItem {
	var items []*entity.SaleItem
	for _, item := range s.saleItems {
		if item.SaleID == saleID {
			cp := *item
			items = append(items, &cp)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

// SaleRepo adaptador con lock propio para uso fuera de transacciones.
type SaleRepo struct{ s *Store }

// NewSaleRepository construye el adaptador.
func NewSaleRepository(s *Store) *SaleRepo { return &SaleRepo{s} }

var _ repository.SaleRepository = (*SaleRepo)(nil)

func (r *SaleRepo) Create(sale *entity.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&txSaleRepo{r.s}).Create(sale)
}

func (r *SaleRepo) GetByID(id string) (*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&txSaleRepo{r.s}).GetByID(id)
}

func (r *SaleRepo) GetItemByID(itemID string) (*entity.SaleItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&txSaleRepo{r.s}).GetItemByID(itemID)
}

func (r *SaleRepo) GetItemForUpdate(itemID string) (*entity.SaleItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&txSaleRepo{r.s}).GetItemForUpdate(itemID)
}

func (r *SaleRepo) UpdateItemReturned(itemID string, returnedQuantity int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&txSaleRepo{r.s}).UpdateItemReturned(itemID, returnedQuantity)
}

func (r *SaleRepo) CountItemsByBatch(batchID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&txSaleRepo{r.s}).CountItemsByBatch(batchID)
}

func (r *SaleRepo) ListByDateRange(from, to time.Time, limit, offset int) ([]*entity.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return (&txSaleRepo{r.s}).ListByDateRange(from, to, limit, offset)
}

// ─── Catálogo ────────────────────────────────────────────────────────────────

// ProductRepo adaptador de productos.
type ProductRepo struct{ s *Store }

// NewProductRepository construye el adaptador.
func NewProductRepository(s *Store) *ProductRepo { return &ProductRepo{s} }

var _ repository.ProductRepository = (*ProductRepo)(nil)

func (r *ProductRepo) Create(product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, code := range product.Barcodes {
		if owner := r.s.barcodeOwner(code); owner != "" && owner != product.ID {
			return domain.ErrBarcodeConflict
		}
	}
	cp := *product
	cp.Barcodes = append([]string(nil), product.Barcodes...)
	r.s.products[product.ID] = &cp
	return nil
}

func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	cp.Barcodes = append([]string(nil), p.Barcodes...)
	return &cp, nil
}

func (r *ProductRepo) GetByBarcode(code string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id := r.s.barcodeOwner(strings.TrimSpace(code))
	if id == "" {
		return nil, nil
	}
	p := r.s.products[id]
	cp := *p
	cp.Barcodes = append([]string(nil), p.Barcodes...)
	return &cp, nil
}

func (r *ProductRepo) Update(product *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[product.ID]; !ok {
		return domain.ErrProductNotFound
	}
	for _, code := range product.Barcodes {
		if owner := r.s.barcodeOwner(code); owner != "" && owner != product.ID {
			return domain.ErrBarcodeConflict
		}
	}
	cp := *product
	cp.Barcodes = append([]string(nil), product.Barcodes...)
	r.s.products[product.ID] = &cp
	return nil
}

func (r *ProductRepo) List(limit, offset int) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.Product
	for _, p := range r.s.products {
		cp := *p
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

func (r *ProductRepo) Delete(id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.batches {
		if b.ProductID == id {
			return domain.ErrConflict
		}
	}
	delete(r.s.products, id)
	return nil
}

func (s *Store) barcodeOwner(code string) string {
	for id, p := range s.products {
		for _, b := range p.Barcodes {
			if b == code {
				return id
			}
		}
	}
	return ""
}

// ─── Promociones ─────────────────────────────────────────────────────────────

// PromotionRepo adaptador de promociones.
type PromotionRepo struct{ s *Store }

// NewPromotionRepository construye el adaptador.
func NewPromotionRepository(s *Store) *PromotionRepo { return &PromotionRepo{s} }

var _ repository.PromotionRepository = (*PromotionRepo)(nil)

func (r *PromotionRepo) Create(promotion *entity.Promotion) error {
	r.s.promoMu.Lock()
	defer r.s.promoMu.Unlock()
	cp := clonePromotion(promotion)
	r.s.promotions[promotion.ID] = cp
	return nil
}

func (r *PromotionRepo) GetByID(id string) (*entity.Promotion, error) {
	r.s.promoMu.Lock()
	defer r.s.promoMu.Unlock()
	p, ok := r.s.promotions[id]
	if !ok {
		return nil, nil
	}
	return clonePromotion(p), nil
}

func (r *PromotionRepo) Update(promotion *entity.Promotion) error {
	r.s.promoMu.Lock()
	defer r.s.promoMu.Unlock()
	if _, ok := r.s.promotions[promotion.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.promotions[promotion.ID] = clonePromotion(promotion)
	return nil
}

func (r *PromotionRepo) List(limit, offset int) ([]*entity.Promotion, error) {
	r.s.promoMu.Lock()
	defer r.s.promoMu.Unlock()
	var list []*entity.Promotion
	for _, p := range r.s.promotions {
		list = append(list, clonePromotion(p))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].StartDate.After(list[j].StartDate) })
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

func (r *PromotionRepo) ActiveForProduct(productID string, now time.Time) ([]*entity.Promotion, error) {
	r.s.promoMu.Lock()
	defer r.s.promoMu.Unlock()
	var list []*entity.Promotion
	for _, p := range r.s.promotions {
		if !p.ActiveAt(now) {
			continue
		}
		if _, ok := p.PriceFor(productID); ok {
			list = append(list, clonePromotion(p))
		}
	}
	return list, nil
}

func clonePromotion(p *entity.Promotion) *entity.Promotion {
	cp := *p
	cp.Entries = append([]entity.PromotionEntry(nil), p.Entries...)
	return &cp
}

// ─── Reportes ────────────────────────────────────────────────────────────────

// ReportRepo adaptador de reportes.
type ReportRepo struct{ s *Store }

// NewReportRepository construye el adaptador.
func NewReportRepository(s *Store) *ReportRepo { return &ReportRepo{s} }

var _ repository.ReportRepository = (*ReportRepo)(nil)

// AddExpense registra un gasto (seed de tests).
func (r *ReportRepo) AddExpense(e *entity.Expense) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *e
	r.s.expenses = append(r.s.expenses, &cp)
}

// AddPurchase registra una compra (seed de tests).
func (r *ReportRepo) AddPurchase(p *entity.Purchase) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *p
	r.s.purchases = append(r.s.purchases, &cp)
}

func (r *ReportRepo) ListExpenses(from, to time.Time) ([]*entity.Expense, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.Expense
	for _, e := range r.s.expenses {
		if !e.Date.Before(from) && !e.Date.After(to) {
			cp := *e
			list = append(list, &cp)
		}
	}
	return list, nil
}

func (r *ReportRepo) ListPurchases(from, to time.Time) ([]*entity.Purchase, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.Purchase
	for _, p := range r.s.purchases {
		if !p.Date.Before(from) && !p.Date.After(to) {
			cp := *p
			list = append(list, &cp)
		}
	}
	return list, nil
}

func (r *ReportRepo) TotalStockValue() (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := decimal.Zero
	for _, b := range r.s.batches {
		total = total.Add(b.CostPrice.Mul(decimal.NewFromInt(b.Quantity)))
	}
	return total, nil
}

func (r *ReportRepo) ListLowStock() ([]repository.LowStockRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []repository.LowStockRow
	for id, p := range r.s.products {
		if p.LowStockThreshold == nil {
			continue
		}
		var stock int64
		for _, b := range r.s.batches {
			if b.ProductID == id {
				stock += b.Quantity
			}
		}
		if stock < *p.LowStockThreshold {
			list = append(list, repository.LowStockRow{
				ProductID:    id,
				Name:         p.Name,
				CurrentStock: stock,
				Threshold:    *p.LowStockThreshold,
			})
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}
