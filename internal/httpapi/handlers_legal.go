package httpapi

import (
	"net/http"

	"github.com/parkhub/parkhub-server/infrastructure/errors"
	"github.com/parkhub/parkhub-server/infrastructure/httputil"
)

// impressum is the legally-mandated operator disclosure (supplemented
// feature), stored as individual settings rows so each field can be
// tombstoned/overwritten independently.
type impressum struct {
	Company string `json:"company"`
	Address string `json:"address"`
	Contact string `json:"contact"`
	VATID   string `json:"vat_id"`
}

const (
	settingImpressumCompany = "impressum_company"
	settingImpressumAddress = "impressum_address"
	settingImpressumContact = "impressum_contact"
	settingImpressumVAT     = "impressum_vat"
)

func loadImpressum(deps *Deps) impressum {
	company, _ := deps.Store.GetSetting(settingImpressumCompany)
	address, _ := deps.Store.GetSetting(settingImpressumAddress)
	contact, _ := deps.Store.GetSetting(settingImpressumContact)
	vat, _ := deps.Store.GetSetting(settingImpressumVAT)
	return impressum{Company: company, Address: address, Contact: contact, VATID: vat}
}

func handleImpressumRead(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, loadImpressum(deps))
	}
}

func handleAdminGetImpressum(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !httputil.RequireAdminRole(w, r) {
			return
		}
		writeData(w, http.StatusOK, loadImpressum(deps))
	}
}

func handleAdminSetImpressum(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !httputil.RequireAdminRole(w, r) {
			return
		}

		var req impressum
		if !httputil.DecodeJSON(w, r, &req) {
			return
		}

		settings := map[string]string{
			settingImpressumCompany: req.Company,
			settingImpressumAddress: req.Address,
			settingImpressumContact: req.Contact,
			settingImpressumVAT:     req.VATID,
		}
		for key, value := range settings {
			if err := deps.Store.SetSetting(key, value); err != nil {
				writeServiceError(w, r, deps.Logger, errors.ServerError("failed to persist impressum", err))
				return
			}
		}
		writeData(w, http.StatusOK, req)
	}
}
