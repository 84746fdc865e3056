package model

// CartLine 장바구니 항목. 이름과 단가는 담은 시점의 스냅샷이다.
type CartLine struct {
	ProductID string `json:"product_id" firestore:"productId"`
	Name      string `json:"name" firestore:"name"`
	Price     int    `json:"price" firestore:"price"`
	Quantity  int    `json:"quantity" firestore:"quantity"`
}

// Subtotal returns Price * Quantity.
func (l CartLine) Subtotal() int {
	return l.Price * l.Quantity
}

// CartTotal sums the subtotals of lines.
func CartTotal(lines []CartLine) int {
	total := 0
	for _, l := range lines {
		total += l.Subtotal()
	}
	return total
}
