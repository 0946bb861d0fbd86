package edgar

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"
)

// Ownership filings (Forms 3 and 4, Schedules 13D/13G) carry their data as
// an embedded XML document instead of narrative items, so they bypass the
// text resolver entirely: the <XML> block is unmarshalled and reshaped into
// the output record.

var xmlBlockRe = regexp.MustCompile(`(?s)<XML>\s*(.+?)\s*</XML>`)

// xmlValue is the <value> wrapper EDGAR uses around most leaf fields.
type xmlValue struct {
	Value string `xml:"value"`
}

func (v xmlValue) get() string { return strings.TrimSpace(v.Value) }

type xmlFootnote struct {
	ID   string `xml:"id,attr"`
	Text string `xml:",chardata"`
}

// ownershipDocument covers the fields shared by Form 3 and Form 4 payloads.
type ownershipDocument struct {
	SchemaVersion     string `xml:"schemaVersion"`
	DocumentType      string `xml:"documentType"`
	PeriodOfReport    string `xml:"periodOfReport"`
	NoSecuritiesOwned string `xml:"noSecuritiesOwned"`

	Issuer struct {
		CIK           string `xml:"issuerCik"`
		Name          string `xml:"issuerName"`
		TradingSymbol string `xml:"issuerTradingSymbol"`
	} `xml:"issuer"`

	ReportingOwner struct {
		ID struct {
			CIK  string `xml:"rptOwnerCik"`
			Name string `xml:"rptOwnerName"`
		} `xml:"reportingOwnerId"`
		Address struct {
			Street1          string `xml:"rptOwnerStreet1"`
			Street2          string `xml:"rptOwnerStreet2"`
			City             string `xml:"rptOwnerCity"`
			State            string `xml:"rptOwnerState"`
			ZipCode          string `xml:"rptOwnerZipCode"`
			StateDescription string `xml:"rptOwnerStateDescription"`
		} `xml:"reportingOwnerAddress"`
		Relationship struct {
			IsDirector        string `xml:"isDirector"`
			IsOfficer         string `xml:"isOfficer"`
			IsTenPercentOwner string `xml:"isTenPercentOwner"`
			IsOther           string `xml:"isOther"`
			OfficerTitle      string `xml:"officerTitle"`
		} `xml:"reportingOwnerRelationship"`
	} `xml:"reportingOwner"`

	DerivativeTable struct {
		Holdings     []derivativeEntry `xml:"derivativeHolding"`
		Transactions []derivativeEntry `xml:"derivativeTransaction"`
	} `xml:"derivativeTable"`

	NonDerivativeTable struct {
		Holdings     []nonDerivativeEntry `xml:"nonDerivativeHolding"`
		Transactions []nonDerivativeEntry `xml:"nonDerivativeTransaction"`
	} `xml:"nonDerivativeTable"`

	Footnotes []xmlFootnote `xml:"footnotes>footnote"`
	Remarks   string        `xml:"remarks"`

	OwnerSignature struct {
		Name string `xml:"signatureName"`
		Date string `xml:"signatureDate"`
	} `xml:"ownerSignature"`
}

type derivativeEntry struct {
	SecurityTitle      xmlValue `xml:"securityTitle"`
	ConversionPrice    xmlValue `xml:"conversionOrExercisePrice"`
	TransactionDate    xmlValue `xml:"transactionDate"`
	ExerciseDate       xmlValue `xml:"exerciseDate"`
	ExpirationDate     xmlValue `xml:"expirationDate"`
	FormType           string   `xml:"transactionCoding>transactionFormType"`
	Code               string   `xml:"transactionCoding>transactionCode"`
	EquitySwapInvolved string   `xml:"transactionCoding>equitySwapInvolved"`
	Shares             xmlValue `xml:"transactionAmounts>transactionShares"`
	PricePerShare      xmlValue `xml:"transactionAmounts>transactionPricePerShare"`
	AcquiredDisposed   xmlValue `xml:"transactionAmounts>transactionAcquiredDisposedCode"`
	UnderlyingTitle    xmlValue `xml:"underlyingSecurity>underlyingSecurityTitle"`
	UnderlyingShares   xmlValue `xml:"underlyingSecurity>underlyingSecurityShares"`
	SharesOwnedAfter   xmlValue `xml:"postTransactionAmounts>sharesOwnedFollowingTransaction"`
	OwnershipNature    xmlValue `xml:"ownershipNature>directOrIndirectOwnership"`
}

type nonDerivativeEntry struct {
	SecurityTitle      xmlValue `xml:"securityTitle"`
	TransactionDate    xmlValue `xml:"transactionDate"`
	FormType           string   `xml:"transactionCoding>transactionFormType"`
	Code               string   `xml:"transactionCoding>transactionCode"`
	EquitySwapInvolved string   `xml:"transactionCoding>equitySwapInvolved"`
	Shares             xmlValue `xml:"transactionAmounts>transactionShares"`
	PricePerShare      xmlValue `xml:"transactionAmounts>transactionPricePerShare"`
	AcquiredDisposed   xmlValue `xml:"transactionAmounts>transactionAcquiredDisposedCode"`
	SharesOwnedAfter   xmlValue `xml:"postTransactionAmounts>sharesOwnedFollowingTransaction"`
	OwnershipNature    xmlValue `xml:"ownershipNature>directOrIndirectOwnership"`
}

// schedule13Document is the payload of an XML-based Schedule 13D/13G.
type schedule13Document struct {
	SubjectCompany struct {
		Name          string `xml:"companyName"`
		CIK           string `xml:"cik"`
		TradingSymbol string `xml:"tradingSymbol"`
	} `xml:"subjectCompany"`

	ReportingOwners []struct {
		ID struct {
			CIK  string `xml:"rptOwnerCik"`
			Name string `xml:"rptOwnerName"`
		} `xml:"reportingOwnerId"`
		Address struct {
			Street1 string `xml:"rptOwnerStreet1"`
			Street2 string `xml:"rptOwnerStreet2"`
			City    string `xml:"rptOwnerCity"`
			State   string `xml:"rptOwnerState"`
			ZipCode string `xml:"rptOwnerZipCode"`
		} `xml:"reportingOwnerAddress"`
	} `xml:"reportingOwner"`

	Holdings struct {
		SharesHeld           string `xml:"sharesHeld"`
		PercentClass         string `xml:"percentClass"`
		InvestmentDiscretion string `xml:"investmentDiscretion"`
	} `xml:"holdings"`

	Footnotes []xmlFootnote `xml:"footnotes>footnote"`
	Remarks   string        `xml:"remarks"`
}

// Output shapes. These mirror the JSON layout of the extracted dataset.

type OwnerAddress struct {
	Street1          string `json:"street1"`
	Street2          string `json:"street2"`
	City             string `json:"city"`
	State            string `json:"state"`
	ZipCode          string `json:"zip_code,omitempty"`
	Zip              string `json:"zip,omitempty"`
	StateDescription string `json:"state_description,omitempty"`
}

type OwnerRelationship struct {
	IsDirector        string `json:"is_director"`
	IsOfficer         string `json:"is_officer"`
	IsTenPercentOwner string `json:"is_ten_percent_owner"`
	IsOther           string `json:"is_other"`
	OfficerTitle      string `json:"officer_title"`
}

type ReportingOwner struct {
	ID struct {
		CIK  string `json:"cik"`
		Name string `json:"name"`
	} `json:"id"`
	Address      OwnerAddress      `json:"address"`
	Relationship OwnerRelationship `json:"relationship"`
}

type DerivativeSecurity struct {
	SecurityTitle      string `json:"security_title"`
	ConversionPrice    string `json:"conversion_price"`
	ExerciseDate       string `json:"exercise_date"`
	ExpirationDate     string `json:"expiration_date"`
	UnderlyingSecurity struct {
		Title  string `json:"title"`
		Shares string `json:"shares"`
	} `json:"underlying_security"`
	OwnershipNature string `json:"ownership_nature"`
}

type NonDerivativeSecurity struct {
	SecurityTitle   string `json:"security_title"`
	SharesOwned     string `json:"shares_owned"`
	OwnershipNature string `json:"ownership_nature"`
}

type TransactionCoding struct {
	FormType           string `json:"form_type"`
	Code               string `json:"code"`
	EquitySwapInvolved string `json:"equity_swap_involved"`
}

type TransactionAmounts struct {
	Shares               string `json:"shares"`
	PricePerShare        string `json:"price_per_share"`
	AcquiredDisposedCode string `json:"acquired_disposed_code"`
}

type DerivativeTransaction struct {
	SecurityTitle      string             `json:"security_title"`
	ConversionPrice    string             `json:"conversion_price"`
	TransactionDate    string             `json:"transaction_date"`
	TransactionCoding  TransactionCoding  `json:"transaction_coding"`
	TransactionAmounts TransactionAmounts `json:"transaction_amounts"`
	UnderlyingSecurity struct {
		Title  string `json:"title"`
		Shares string `json:"shares"`
	} `json:"underlying_security"`
	PostTransaction struct {
		SharesOwned string `json:"shares_owned"`
	} `json:"post_transaction"`
	OwnershipNature string `json:"ownership_nature"`
	ExerciseDate    string `json:"exercise_date"`
	ExpirationDate  string `json:"expiration_date"`
}

type NonDerivativeTransaction struct {
	SecurityTitle      string             `json:"security_title"`
	TransactionDate    string             `json:"transaction_date"`
	TransactionCoding  TransactionCoding  `json:"transaction_coding"`
	TransactionAmounts TransactionAmounts `json:"transaction_amounts"`
	PostTransaction    struct {
		SharesOwned string `json:"shares_owned"`
	} `json:"post_transaction"`
	OwnershipNature string `json:"ownership_nature"`
}

// Form3Data is the structured payload of a Form 3 (initial ownership).
type Form3Data struct {
	DerivativeSecurities    []DerivativeSecurity    `json:"derivative_securities"`
	NonDerivativeSecurities []NonDerivativeSecurity `json:"non_derivative_securities"`
	Footnotes               map[string]string       `json:"footnotes"`
	Remarks                 string                  `json:"remarks"`
	IssuerInfo              struct {
		CIK           string `json:"cik"`
		Name          string `json:"name"`
		TradingSymbol string `json:"trading_symbol"`
	} `json:"issuer_info"`
	ReportingOwner ReportingOwner `json:"reporting_owner"`
	OwnerSignature struct {
		Name string `json:"name"`
		Date string `json:"date"`
	} `json:"owner_signature"`
	DocumentInfo struct {
		SchemaVersion     string `json:"schema_version"`
		DocumentType      string `json:"document_type"`
		PeriodOfReport    string `json:"period_of_report"`
		NoSecuritiesOwned string `json:"no_securities_owned"`
	} `json:"document_info"`
}

// Form4Data is the structured payload of a Form 4 (ownership changes).
type Form4Data struct {
	DerivativeTransactions    []DerivativeTransaction    `json:"derivative_transactions"`
	NonDerivativeTransactions []NonDerivativeTransaction `json:"non_derivative_transactions"`
	Footnotes                 map[string]string          `json:"footnotes"`
	Remarks                   string                     `json:"remarks"`
}

// Schedule13Owner is one reporting owner of a Schedule 13D/13G.
type Schedule13Owner struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Address OwnerAddress `json:"address"`
}

// Schedule13Data is the structured payload of an XML Schedule 13D/13G.
type Schedule13Data struct {
	SubjectCompany struct {
		Name          string `json:"name"`
		CIK           string `json:"cik"`
		TradingSymbol string `json:"trading_symbol"`
	} `json:"subject_company"`
	ReportingOwners []Schedule13Owner `json:"reporting_owners"`
	Holdings        struct {
		SharesHeld           string `json:"shares_held"`
		PercentClass         string `json:"percent_class"`
		InvestmentDiscretion string `json:"investment_discretion"`
	} `json:"holdings"`
	Footnotes map[string]string `json:"footnotes"`
	Remarks   string            `json:"remarks"`
}

// extractOwnershipData locates the embedded <XML> block in the raw filing
// and reshapes it into the typed payload for the filing type.
func extractOwnershipData(content, filingType string) (any, error) {
	m := xmlBlockRe.FindStringSubmatch(content)
	if m == nil {
		return nil, fmt.Errorf("%w: no embedded xml block", ErrNoSectionsExtracted)
	}
	xmlContent := strings.TrimSpace(m[1])
	if i := strings.Index(xmlContent, "<?xml"); i > 0 {
		xmlContent = xmlContent[i:]
	}

	switch filingType {
	case "3":
		var doc ownershipDocument
		if err := xml.Unmarshal([]byte(xmlContent), &doc); err != nil {
			return nil, fmt.Errorf("parse form 3 xml: %w", err)
		}
		return buildForm3(&doc), nil
	case "4":
		var doc ownershipDocument
		if err := xml.Unmarshal([]byte(xmlContent), &doc); err != nil {
			return nil, fmt.Errorf("parse form 4 xml: %w", err)
		}
		return buildForm4(&doc), nil
	default:
		var doc schedule13Document
		if err := xml.Unmarshal([]byte(xmlContent), &doc); err != nil {
			return nil, fmt.Errorf("parse schedule 13 xml: %w", err)
		}
		return buildSchedule13(&doc), nil
	}
}

func footnoteMap(notes []xmlFootnote) map[string]string {
	out := make(map[string]string, len(notes))
	for _, n := range notes {
		if n.ID != "" && strings.TrimSpace(n.Text) != "" {
			out[n.ID] = strings.TrimSpace(n.Text)
		}
	}
	return out
}

func buildForm3(doc *ownershipDocument) *Form3Data {
	data := &Form3Data{
		DerivativeSecurities:    []DerivativeSecurity{},
		NonDerivativeSecurities: []NonDerivativeSecurity{},
		Footnotes:               footnoteMap(doc.Footnotes),
		Remarks:                 strings.TrimSpace(doc.Remarks),
	}
	data.DocumentInfo.SchemaVersion = strings.TrimSpace(doc.SchemaVersion)
	data.DocumentInfo.DocumentType = strings.TrimSpace(doc.DocumentType)
	data.DocumentInfo.PeriodOfReport = strings.TrimSpace(doc.PeriodOfReport)
	data.DocumentInfo.NoSecuritiesOwned = strings.TrimSpace(doc.NoSecuritiesOwned)

	data.IssuerInfo.CIK = strings.TrimSpace(doc.Issuer.CIK)
	data.IssuerInfo.Name = strings.TrimSpace(doc.Issuer.Name)
	data.IssuerInfo.TradingSymbol = strings.TrimSpace(doc.Issuer.TradingSymbol)

	ro := doc.ReportingOwner
	data.ReportingOwner.ID.CIK = strings.TrimSpace(ro.ID.CIK)
	data.ReportingOwner.ID.Name = strings.TrimSpace(ro.ID.Name)
	data.ReportingOwner.Address = OwnerAddress{
		Street1:          strings.TrimSpace(ro.Address.Street1),
		Street2:          strings.TrimSpace(ro.Address.Street2),
		City:             strings.TrimSpace(ro.Address.City),
		State:            strings.TrimSpace(ro.Address.State),
		ZipCode:          strings.TrimSpace(ro.Address.ZipCode),
		StateDescription: strings.TrimSpace(ro.Address.StateDescription),
	}
	data.ReportingOwner.Relationship = OwnerRelationship{
		IsDirector:        strings.TrimSpace(ro.Relationship.IsDirector),
		IsOfficer:         strings.TrimSpace(ro.Relationship.IsOfficer),
		IsTenPercentOwner: strings.TrimSpace(ro.Relationship.IsTenPercentOwner),
		IsOther:           strings.TrimSpace(ro.Relationship.IsOther),
		OfficerTitle:      strings.TrimSpace(ro.Relationship.OfficerTitle),
	}

	for _, h := range doc.DerivativeTable.Holdings {
		sec := DerivativeSecurity{
			SecurityTitle:   h.SecurityTitle.get(),
			ConversionPrice: h.ConversionPrice.get(),
			ExerciseDate:    h.ExerciseDate.get(),
			ExpirationDate:  h.ExpirationDate.get(),
			OwnershipNature: h.OwnershipNature.get(),
		}
		sec.UnderlyingSecurity.Title = h.UnderlyingTitle.get()
		sec.UnderlyingSecurity.Shares = h.UnderlyingShares.get()
		data.DerivativeSecurities = append(data.DerivativeSecurities, sec)
	}
	for _, h := range doc.NonDerivativeTable.Holdings {
		data.NonDerivativeSecurities = append(data.NonDerivativeSecurities, NonDerivativeSecurity{
			SecurityTitle:   h.SecurityTitle.get(),
			SharesOwned:     h.SharesOwnedAfter.get(),
			OwnershipNature: h.OwnershipNature.get(),
		})
	}

	data.OwnerSignature.Name = strings.TrimSpace(doc.OwnerSignature.Name)
	data.OwnerSignature.Date = strings.TrimSpace(doc.OwnerSignature.Date)
	return data
}

func buildForm4(doc *ownershipDocument) *Form4Data {
	data := &Form4Data{
		DerivativeTransactions:    []DerivativeTransaction{},
		NonDerivativeTransactions: []NonDerivativeTransaction{},
		Footnotes:                 footnoteMap(doc.Footnotes),
		Remarks:                   strings.TrimSpace(doc.Remarks),
	}

	for _, t := range doc.DerivativeTable.Transactions {
		trans := DerivativeTransaction{
			SecurityTitle:   t.SecurityTitle.get(),
			ConversionPrice: t.ConversionPrice.get(),
			TransactionDate: t.TransactionDate.get(),
			TransactionCoding: TransactionCoding{
				FormType:           strings.TrimSpace(t.FormType),
				Code:               strings.TrimSpace(t.Code),
				EquitySwapInvolved: strings.TrimSpace(t.EquitySwapInvolved),
			},
			TransactionAmounts: TransactionAmounts{
				Shares:               t.Shares.get(),
				PricePerShare:        t.PricePerShare.get(),
				AcquiredDisposedCode: t.AcquiredDisposed.get(),
			},
			OwnershipNature: t.OwnershipNature.get(),
			ExerciseDate:    t.ExerciseDate.get(),
			ExpirationDate:  t.ExpirationDate.get(),
		}
		trans.UnderlyingSecurity.Title = t.UnderlyingTitle.get()
		trans.UnderlyingSecurity.Shares = t.UnderlyingShares.get()
		trans.PostTransaction.SharesOwned = t.SharesOwnedAfter.get()
		data.DerivativeTransactions = append(data.DerivativeTransactions, trans)
	}
	for _, t := range doc.NonDerivativeTable.Transactions {
		trans := NonDerivativeTransaction{
			SecurityTitle:   t.SecurityTitle.get(),
			TransactionDate: t.TransactionDate.get(),
			TransactionCoding: TransactionCoding{
				FormType:           strings.TrimSpace(t.FormType),
				Code:               strings.TrimSpace(t.Code),
				EquitySwapInvolved: strings.TrimSpace(t.EquitySwapInvolved),
			},
			TransactionAmounts: TransactionAmounts{
				Shares:               t.Shares.get(),
				PricePerShare:        t.PricePerShare.get(),
				AcquiredDisposedCode: t.AcquiredDisposed.get(),
			},
			OwnershipNature: t.OwnershipNature.get(),
		}
		trans.PostTransaction.SharesOwned = t.SharesOwnedAfter.get()
		data.NonDerivativeTransactions = append(data.NonDerivativeTransactions, trans)
	}
	return data
}

func buildSchedule13(doc *schedule13Document) *Schedule13Data {
	data := &Schedule13Data{
		Footnotes: footnoteMap(doc.Footnotes),
		Remarks:   strings.TrimSpace(doc.Remarks),
	}
	data.SubjectCompany.Name = strings.TrimSpace(doc.SubjectCompany.Name)
	data.SubjectCompany.CIK = strings.TrimSpace(doc.SubjectCompany.CIK)
	data.SubjectCompany.TradingSymbol = strings.TrimSpace(doc.SubjectCompany.TradingSymbol)

	for _, o := range doc.ReportingOwners {
		owner := Schedule13Owner{
			ID:   strings.TrimSpace(o.ID.CIK),
			Name: strings.TrimSpace(o.ID.Name),
			Address: OwnerAddress{
				Street1: strings.TrimSpace(o.Address.Street1),
				Street2: strings.TrimSpace(o.Address.Street2),
				City:    strings.TrimSpace(o.Address.City),
				State:   strings.TrimSpace(o.Address.State),
				Zip:     strings.TrimSpace(o.Address.ZipCode),
			},
		}
		data.ReportingOwners = append(data.ReportingOwners, owner)
	}

	data.Holdings.SharesHeld = strings.TrimSpace(doc.Holdings.SharesHeld)
	data.Holdings.PercentClass = strings.TrimSpace(doc.Holdings.PercentClass)
	data.Holdings.InvestmentDiscretion = strings.TrimSpace(doc.Holdings.InvestmentDiscretion)
	return data
}
