package dialog

type State string

const (
	StateIdle State = "idle"

	// Калькулятор (клиент). Снимок мастера и черновик лежат в payload["wizard"].
	StateCalc State = "calc"

	// Оформление заказа
	StateCheckoutName    State = "checkout_name"
	StateCheckoutPhone   State = "checkout_phone"
	StateCheckoutComment State = "checkout_comment"
	StateCheckoutConfirm State = "checkout_confirm"

	// Админка каталога
	StateAdmMenu     State = "adm_menu"
	StateAdmAwaitTxt State = "adm_await_text" // ввод значения поля, что именно правим — в payload["edit"]

	// Прайс-лист
	StatePriceMenu       State = "price_menu"
	StatePriceImportFile State = "price_import_file" // ожидание xlsx
)

// Ключи payload
const (
	KeyWizard  = "wizard"
	KeyEdit    = "edit"
	KeyName    = "name"
	KeyPhone   = "phone"
	KeyComment = "comment"
	KeyMsgID   = "msg_id" // сообщение с inline-клавиатурой, которое редактируем
)

type Payload map[string]any

type Item struct {
	ChatID  int64
	State   State
	Payload Payload
}
