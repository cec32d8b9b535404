package portal

import "fmt"

// Portal markup. Everything that depends on the refund portal's DOM lives here.
var (
	selLogin        = CSS("#Login")
	selPassword     = CSS("#Password")
	selLoginSubmit  = CSS("#LoginSubmit")
	selPopupDismiss = XPath("//button[contains(., 'Pomiń') or contains(., 'Zamknij') or contains(., 'Akceptuję') or contains(., 'Zgadzam się') or contains(., 'OK') or @aria-label='Close']")

	selPicker         = CSS("app-date-picker")
	selPickerHeader   = CSS("app-date-picker .month")
	selPickerPrevious = CSS("app-date-picker img.chevron-previous")
	selPickerNext     = CSS("app-date-picker img.chevron-next")

	selExecuteDate   = CSS("date-input[formcontrolname='executeDate']")
	selServiceInput  = CSS("app-dropdown-control input[placeholder='Wybierz usługę']")
	selRefundType    = CSS("input[formcontrolname='refundTitleTypeName']")
	selAddService    = XPath("//button[contains(., 'Dodaj kolejną usługę')]")
	selNextPageOne   = XPath("//button[contains(., 'Dalej')]")
	selInvoiceNumber = CSS("input[formcontrolname='invoiceNumber']")
	selQuantity      = CSS("app-counter-input[formcontrolname='quantityServices']")
	selDateInput     = CSS("date-input")
	selCity          = CSS("input[placeholder='Miasto']")
	selUnitPrice     = CSS("input[formcontrolname='servicePrice']")
	selAmount        = CSS("input[formcontrolname='invoiceAmount']")
	selNextPageTwo   = CSS("button.btn-primary:not([disabled])")
	selAccountNo     = CSS("#accountNo")
	selAccountOwner  = CSS("#accountOwner")
)

func selPickerDay(day int) Selector {
	return XPath(fmt.Sprintf("//app-date-picker//div[contains(@class, 'day') and not(contains(@class, 'disabled')) and normalize-space()='%d']", day))
}

func selDropdownOption(text string) Selector {
	return XPath(fmt.Sprintf("//li[contains(@class, 'dropdown-list-group-item') and contains(., '%s')]", text))
}
