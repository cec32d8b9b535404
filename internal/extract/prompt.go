package extract

import "strings"

const promptTemplate = `Przeanalizuj poniższy tekst, który może zawierać jedną lub więcej faktur. Tekst może być chaotyczny z powodu błędów w odczycie PDF. Postaraj się zidentyfikować kluczowe informacje mimo to.
Dla KAŻDEJ znalezionej faktury wyodrębnij następujące dane.
Zwróć odpowiedź WYŁĄCZNIE w formacie JSON, jako tablicę (listę) obiektów, nawet jeśli w tekście jest tylko jedna faktura.
Jeśli nie znajdziesz żadnych faktur, zwróć pustą tablicę [].

Struktura każdego obiektu w tablicy:
{
  "numer": "string (numer faktury, np. 01/05/2025)",
  "liczba_uslug": "integer (ilość usług, zazwyczaj 1)",
  "data_wystawienia": "string (w formacie YYYY-MM-DD)",
  "data_wykonania_uslugi": "string (data sprzedaży/wykonania usługi w formacie YYYY-MM-DD)",
  "miasto_wykonania": "string (miasto wykonania usługi, np. Szczecin)",
  "cena_jednostkowa": "float (cena netto za jedną usługę, np. 130.00)",
  "kwota_faktury": "float (łączna kwota do zapłaty/brutto, np. 130.00)"
}

Jeśli jakaś dana w konkretnej fakturze nie jest dostępna, użyj wartości null. Zwróć szczególną uwagę na daty i kwoty.

--- TEKST DOKUMENTU ---
{{TEXT}}
`

// Prompt asks the model for every invoice found in text as a JSON array.
func Prompt(text string) string {
	return strings.Replace(promptTemplate, "{{TEXT}}", text, 1)
}
