package store

// Shopper-facing notification texts.
const (
	MsgAddSuccess        = "Produto adicionado no carrinho."
	MsgStockInsufficient = "Quantidade solicitada fora de estoque"
	MsgAddFailed         = "Erro na adição do produto"
	MsgRemoveSuccess     = "Produto excluído do carrinho."
	MsgRemoveFailed      = "Erro na remoção do produto"
	MsgUpdateSuccess     = "Quantidade do produto alterada no carrinho."
	MsgUpdateFailed      = "Erro na alteração de quantidade do produto"
)
