package domain

import "github.com/shopspring/decimal"

// OrderBook representa el libro de órdenes del mercado del token.
type OrderBook struct {
	Bids []BookLevel // ordenados mayor a menor precio
	Asks []BookLevel // ordenados menor a mayor precio
}

// BookLevel es un nivel de precio en el orderbook.
type BookLevel struct {
	Price decimal.Decimal
	Size  decimal.Decimal
}

// TopBid devuelve el mejor precio de compra (mayor bid).
// ok es false si ese lado del book está vacío.
func (ob OrderBook) TopBid() (price decimal.Decimal, ok bool) {
	if len(ob.Bids) == 0 {
		return decimal.Decimal{}, false
	}
	return ob.Bids[0].Price, true
}

// TopAsk devuelve el mejor precio de venta (menor ask).
// ok es false si ese lado del book está vacío.
func (ob OrderBook) TopAsk() (price decimal.Decimal, ok bool) {
	if len(ob.Asks) == 0 {
		return decimal.Decimal{}, false
	}
	return ob.Asks[0].Price, true
}
