// Package i18n translates banner and validation codes. Spanish is the default
// language; unknown codes are returned unchanged.
package i18n

import (
	"context"
	"strings"
)

const DefaultLang = "es"

type ctxKey struct{}

var catalog = map[string]map[string]string{
	"es": {
		"required":             "Requerido",
		"invalid_email":        "Email inválido",
		"invalid_choice":       "Opción inválida",
		"invalid_number":       "Número inválido",
		"invalid_date":         "Fecha inválida",
		"must_be_positive":     "Debe ser mayor que cero",
		"must_not_be_negative": "No puede ser negativo",
		"out_of_range":         "Fuera de rango",
		"too_long":             "Demasiado largo",
		"email_taken":          "Email ya existe",
		"name_taken":           "Nombre ya existe",
		"client_has_orders":    "El cliente tiene órdenes",
		"cannot_delete_self":   "No puede eliminar su propio usuario",
		"file_too_large":       "Archivo demasiado grande",
		"not_found":            "No encontrado",
		"forbidden":            "Acceso denegado",
		"unexpected_error":     "Error inesperado",
		"invalid_credentials":  "Credenciales inválidas",
		"form_errors":          "Errores en el formulario",
		"created":              "Creado",
		"updated":              "Actualizado",
		"deleted":              "Eliminado",
		"client_created":       "Cliente creado",
		"client_updated":       "Cliente actualizado",
		"client_deleted":       "Cliente eliminado",
		"category_created":     "Categoría creada",
		"category_updated":     "Categoría actualizada",
		"category_deleted":     "Categoría eliminada",
		"seller_created":       "Vendedor creado",
		"seller_updated":       "Vendedor actualizado",
		"seller_deleted":       "Vendedor eliminado",
		"order_created":        "Orden creada",
		"order_updated":        "Orden actualizada",
		"order_deleted":        "Orden eliminada",
		"payment_created":      "Pago registrado",
		"payment_deleted":      "Pago eliminado",
		"description_saved":    "Descripción guardada",
		"description_deleted":  "Descripción eliminada",
		"subtotals_recomputed": "Subtotales recalculados",
		"attachment_uploaded":  "Archivo subido",
		"attachment_deleted":   "Archivo eliminado",
		"user_created":         "Usuario creado",
		"user_updated":         "Usuario actualizado",
		"user_deleted":         "Usuario eliminado",
		"smtp_saved":           "Configuración SMTP guardada",
		"company_saved":        "Datos de la empresa guardados",
		"settings_saved":       "Configuración guardada",
		"notification_sent":    "Notificación enviada",
		"notification_failed":  "No se pudo enviar la notificación",
		"pdf_unavailable":      "No se pudo generar PDF, use la vista imprimible.",
		"logged_out":           "Sesión cerrada",
		"too_short":            "Demasiado corto",
		"payment_updated":      "Pago actualizado",
		"welcome":              "Bienvenido",
		"dashboard":            "Panel",
		"clients":              "Clientes",
		"categories":           "Categorías",
		"sellers":              "Vendedores",
		"orders":               "Órdenes",
		"payments":             "Pagos",
		"users":                "Usuarios",
		"settings":             "Configuración",
		"notifications":        "Notificaciones",
		"calendar":             "Calendario",
		"login":                "Ingresar",
		"logout":               "Salir",
		"save":                 "Guardar",
		"delete":               "Eliminar",
		"edit":                 "Editar",
		"new":                  "Nuevo",
		"back":                 "Volver",
		"search":               "Buscar",
		"name":                 "Nombre",
		"email":                "Email",
		"phone":                "Teléfono",
		"tax_id":               "RUC",
		"category":             "Categoría",
		"client":               "Cliente",
		"seller":               "Vendedor",
		"user":                 "Usuario",
		"date":                 "Fecha",
		"net_price":            "Neto",
		"tax":                  "IGV",
		"total":                "Total",
		"paid":                 "Pagado",
		"balance":              "Saldo",
		"state":                "Estado",
		"work_status":          "Trabajo",
		"dispatch_status":      "Despacho",
		"payment_status":       "Pago",
		"notes":                "Notas",
		"amount":               "Monto",
		"method":               "Método",
		"role":                 "Rol",
		"password":             "Contraseña",
		"quantity":             "Cantidad",
		"unit_price":           "Precio unitario",
		"subtotal":             "Subtotal",
		"text":                 "Descripción",
		"recompute":            "Recalcular",
		"attachments":          "Archivos",
		"upload":               "Subir",
		"descriptions":         "Descripciones",
		"print":                "Imprimir",
		"pdf":                  "PDF",
		"whatsapp":             "WhatsApp",
		"send":                 "Enviar",
		"recipient":            "Destinatario",
		"channel":              "Canal",
		"status":               "Estado",
		"response":             "Respuesta",
		"smtp":                 "Correo SMTP",
		"company":              "Empresa",
		"address":              "Dirección",
		"host":                 "Servidor",
		"port":                 "Puerto",
		"use_tls":              "Usar TLS",
		"username":             "Usuario SMTP",
		"from":                 "Remitente",
		"timeout_seconds":      "Tiempo límite (s)",
		"test_email":           "Email de prueba",
		"key":                  "Clave",
		"value":                "Valor",
		"total_sales":          "Ventas totales",
		"total_payments":       "Pagos totales",
		"outstanding_orders":   "Órdenes con saldo",
		"recent_notifications": "Notificaciones recientes",
		"top_outstanding":      "Mayores saldos",
		"date_from":            "Desde",
		"date_to":              "Hasta",
		"none":                 "Ninguno",
		"all":                  "Todos",
		"pending":              "Pendiente",
		"partial":              "Parcial",
		"in_progress":          "En proceso",
		"ready":                "Listo",
		"dispatched":           "Despachado",
		"filter":               "Filtrar",
		"sort_balance":         "Ordenar por saldo",
		"stale":                "Desactualizado",
		"confirm_delete":       "¿Eliminar?",
		"file":                 "Archivo",
		"size":                 "Tamaño",
		"admin":                "Administrador",
		"staff":                "Personal",
		"sent":                 "Enviado",
		"simulated":            "Simulado",
		"error":                "Error",
		"print_shop":           "Imprenta",
		"password_hint":        "Vacío mantiene la actual",
		"clear_password":       "Borrar la contraseña guardada",
	},
	"en": {
		"required":             "Required",
		"invalid_email":        "Invalid email",
		"invalid_choice":       "Invalid choice",
		"invalid_number":       "Invalid number",
		"invalid_date":         "Invalid date",
		"must_be_positive":     "Must be greater than zero",
		"must_not_be_negative": "Must not be negative",
		"out_of_range":         "Out of range",
		"too_long":             "Too long",
		"email_taken":          "Email already exists",
		"name_taken":           "Name already exists",
		"client_has_orders":    "Client has orders",
		"cannot_delete_self":   "You cannot delete your own user",
		"file_too_large":       "File too large",
		"not_found":            "Not found",
		"forbidden":            "Forbidden",
		"unexpected_error":     "Unexpected error",
		"invalid_credentials":  "Invalid credentials",
		"form_errors":          "The form has errors",
		"created":              "Created",
		"updated":              "Updated",
		"deleted":              "Deleted",
		"client_created":       "Client created",
		"client_updated":       "Client updated",
		"client_deleted":       "Client deleted",
		"category_created":     "Category created",
		"category_updated":     "Category updated",
		"category_deleted":     "Category deleted",
		"seller_created":       "Seller created",
		"seller_updated":       "Seller updated",
		"seller_deleted":       "Seller deleted",
		"order_created":        "Order created",
		"order_updated":        "Order updated",
		"order_deleted":        "Order deleted",
		"payment_created":      "Payment registered",
		"payment_deleted":      "Payment deleted",
		"description_saved":    "Line item saved",
		"description_deleted":  "Line item deleted",
		"subtotals_recomputed": "Subtotals recomputed",
		"attachment_uploaded":  "File uploaded",
		"attachment_deleted":   "File deleted",
		"user_created":         "User created",
		"user_updated":         "User updated",
		"user_deleted":         "User deleted",
		"smtp_saved":           "SMTP settings saved",
		"company_saved":        "Company details saved",
		"settings_saved":       "Settings saved",
		"notification_sent":    "Notification sent",
		"notification_failed":  "Notification could not be sent",
		"pdf_unavailable":      "PDF could not be generated, use the printable view.",
		"logged_out":           "Logged out",
		"too_short":            "Too short",
		"payment_updated":      "Payment updated",
		"welcome":              "Welcome",
		"dashboard":            "Dashboard",
		"clients":              "Clients",
		"categories":           "Categories",
		"sellers":              "Sellers",
		"orders":               "Orders",
		"payments":             "Payments",
		"users":                "Users",
		"settings":             "Settings",
		"notifications":        "Notifications",
		"calendar":             "Calendar",
		"login":                "Log in",
		"logout":               "Log out",
		"save":                 "Save",
		"delete":               "Delete",
		"edit":                 "Edit",
		"new":                  "New",
		"back":                 "Back",
		"search":               "Search",
		"name":                 "Name",
		"email":                "Email",
		"phone":                "Phone",
		"tax_id":               "Tax ID",
		"category":             "Category",
		"client":               "Client",
		"seller":               "Seller",
		"user":                 "User",
		"date":                 "Date",
		"net_price":            "Net",
		"tax":                  "Tax",
		"total":                "Total",
		"paid":                 "Paid",
		"balance":              "Balance",
		"state":                "State",
		"work_status":          "Work",
		"dispatch_status":      "Dispatch",
		"payment_status":       "Payment",
		"notes":                "Notes",
		"amount":               "Amount",
		"method":               "Method",
		"role":                 "Role",
		"password":             "Password",
		"quantity":             "Quantity",
		"unit_price":           "Unit price",
		"subtotal":             "Subtotal",
		"text":                 "Description",
		"recompute":            "Recompute",
		"attachments":          "Attachments",
		"upload":               "Upload",
		"descriptions":         "Line items",
		"print":                "Print",
		"pdf":                  "PDF",
		"whatsapp":             "WhatsApp",
		"send":                 "Send",
		"recipient":            "Recipient",
		"channel":              "Channel",
		"status":               "Status",
		"response":             "Response",
		"smtp":                 "SMTP mail",
		"company":              "Company",
		"address":              "Address",
		"host":                 "Host",
		"port":                 "Port",
		"use_tls":              "Use TLS",
		"username":             "Username",
		"from":                 "Sender",
		"timeout_seconds":      "Timeout (s)",
		"test_email":           "Test email",
		"key":                  "Key",
		"value":                "Value",
		"total_sales":          "Total sales",
		"total_payments":       "Total payments",
		"outstanding_orders":   "Orders with balance",
		"recent_notifications": "Recent notifications",
		"top_outstanding":      "Largest balances",
		"date_from":            "From",
		"date_to":              "To",
		"none":                 "None",
		"all":                  "All",
		"pending":              "Pending",
		"partial":              "Partial",
		"in_progress":          "In progress",
		"ready":                "Ready",
		"dispatched":           "Dispatched",
		"filter":               "Filter",
		"sort_balance":         "Sort by balance",
		"stale":                "Stale",
		"confirm_delete":       "Delete?",
		"file":                 "File",
		"size":                 "Size",
		"admin":                "Administrator",
		"staff":                "Staff",
		"sent":                 "Sent",
		"simulated":            "Simulated",
		"error":                "Error",
		"print_shop":           "Print shop",
		"password_hint":        "Blank keeps the current one",
		"clear_password":       "Clear the stored password",
	},
}

// Supported reports whether lang has a catalog.
func Supported(lang string) bool {
	_, ok := catalog[lang]
	return ok
}

// T translates code into lang, falling back to the default language and then to the code itself.
func T(lang, code string) string {
	if msgs, ok := catalog[lang]; ok {
		if s, ok := msgs[code]; ok {
			return s
		}
	}
	if s, ok := catalog[DefaultLang][code]; ok {
		return s
	}
	return code
}

// DetectLanguage picks the first supported primary tag of an Accept-Language header.
func DetectLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		primary, _, _ := strings.Cut(strings.ToLower(tag), "-")
		if Supported(primary) {
			return primary
		}
	}
	return DefaultLang
}

func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

func LangFromContext(ctx context.Context) string {
	if l, ok := ctx.Value(ctxKey{}).(string); ok && l != "" {
		return l
	}
	return DefaultLang
}
