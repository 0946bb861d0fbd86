package edgar

import (
	"errors"
	"testing"
)

const form4Fixture = `<SEC-DOCUMENT>0000320193-23-000001.txt
<DOCUMENT>
<TYPE>4
<SEQUENCE>1
<TEXT>
<XML>
<?xml version="1.0"?>
<ownershipDocument>
    <schemaVersion>X0407</schemaVersion>
    <documentType>4</documentType>
    <periodOfReport>2023-05-01</periodOfReport>
    <issuer>
        <issuerCik>0000320193</issuerCik>
        <issuerName>Apple Inc.</issuerName>
        <issuerTradingSymbol>AAPL</issuerTradingSymbol>
    </issuer>
    <reportingOwner>
        <reportingOwnerId>
            <rptOwnerCik>0001214156</rptOwnerCik>
            <rptOwnerName>DOE JANE</rptOwnerName>
        </reportingOwnerId>
        <reportingOwnerAddress>
            <rptOwnerStreet1>ONE APPLE PARK WAY</rptOwnerStreet1>
            <rptOwnerCity>CUPERTINO</rptOwnerCity>
            <rptOwnerState>CA</rptOwnerState>
            <rptOwnerZipCode>95014</rptOwnerZipCode>
        </reportingOwnerAddress>
        <reportingOwnerRelationship>
            <isOfficer>1</isOfficer>
            <officerTitle>Chief Financial Officer</officerTitle>
        </reportingOwnerRelationship>
    </reportingOwner>
    <nonDerivativeTable>
        <nonDerivativeTransaction>
            <securityTitle><value>Common Stock</value></securityTitle>
            <transactionDate><value>2023-05-01</value></transactionDate>
            <transactionCoding>
                <transactionFormType>4</transactionFormType>
                <transactionCode>S</transactionCode>
                <equitySwapInvolved>0</equitySwapInvolved>
            </transactionCoding>
            <transactionAmounts>
                <transactionShares><value>1000</value></transactionShares>
                <transactionPricePerShare><value>170.25</value></transactionPricePerShare>
                <transactionAcquiredDisposedCode><value>D</value></transactionAcquiredDisposedCode>
            </transactionAmounts>
            <postTransactionAmounts>
                <sharesOwnedFollowingTransaction><value>5000</value></sharesOwnedFollowingTransaction>
            </postTransactionAmounts>
            <ownershipNature>
                <directOrIndirectOwnership><value>D</value></directOrIndirectOwnership>
            </ownershipNature>
        </nonDerivativeTransaction>
    </nonDerivativeTable>
    <footnotes>
        <footnote id="F1">Shares sold under a trading plan.</footnote>
    </footnotes>
    <remarks>None</remarks>
    <ownerSignature>
        <signatureName>/s/ Jane Doe</signatureName>
        <signatureDate>2023-05-03</signatureDate>
    </ownerSignature>
</ownershipDocument>
</XML>
</TEXT>
</DOCUMENT>
`

func TestExtractOwnershipDataForm4(t *testing.T) {
	got, err := extractOwnershipData(form4Fixture, "4")
	if err != nil {
		t.Fatalf("extractOwnershipData: %v", err)
	}
	data, ok := got.(*Form4Data)
	if !ok {
		t.Fatalf("payload type = %T, want *Form4Data", got)
	}

	if len(data.NonDerivativeTransactions) != 1 {
		t.Fatalf("non-derivative transactions = %d, want 1", len(data.NonDerivativeTransactions))
	}
	trans := data.NonDerivativeTransactions[0]
	if trans.SecurityTitle != "Common Stock" {
		t.Errorf("security title = %q", trans.SecurityTitle)
	}
	if trans.TransactionCoding.Code != "S" {
		t.Errorf("transaction code = %q", trans.TransactionCoding.Code)
	}
	if trans.TransactionAmounts.Shares != "1000" || trans.TransactionAmounts.PricePerShare != "170.25" {
		t.Errorf("transaction amounts = %+v", trans.TransactionAmounts)
	}
	if trans.PostTransaction.SharesOwned != "5000" {
		t.Errorf("shares owned after = %q", trans.PostTransaction.SharesOwned)
	}
	if trans.OwnershipNature != "D" {
		t.Errorf("ownership nature = %q", trans.OwnershipNature)
	}
	if len(data.DerivativeTransactions) != 0 {
		t.Errorf("derivative transactions = %d, want 0", len(data.DerivativeTransactions))
	}
	if data.Footnotes["F1"] != "Shares sold under a trading plan." {
		t.Errorf("footnotes = %v", data.Footnotes)
	}
	if data.Remarks != "None" {
		t.Errorf("remarks = %q", data.Remarks)
	}
}

func TestExtractOwnershipDataForm3(t *testing.T) {
	content := `<XML>
<?xml version="1.0"?>
<ownershipDocument>
    <schemaVersion>X0206</schemaVersion>
    <documentType>3</documentType>
    <periodOfReport>2023-01-15</periodOfReport>
    <noSecuritiesOwned>0</noSecuritiesOwned>
    <issuer>
        <issuerCik>0001018724</issuerCik>
        <issuerName>Amazon.com Inc.</issuerName>
        <issuerTradingSymbol>AMZN</issuerTradingSymbol>
    </issuer>
    <reportingOwner>
        <reportingOwnerId>
            <rptOwnerCik>0001043298</rptOwnerCik>
            <rptOwnerName>ROE RICHARD</rptOwnerName>
        </reportingOwnerId>
        <reportingOwnerRelationship>
            <isDirector>1</isDirector>
        </reportingOwnerRelationship>
    </reportingOwner>
    <nonDerivativeTable>
        <nonDerivativeHolding>
            <securityTitle><value>Common Stock</value></securityTitle>
            <postTransactionAmounts>
                <sharesOwnedFollowingTransaction><value>250</value></sharesOwnedFollowingTransaction>
            </postTransactionAmounts>
            <ownershipNature>
                <directOrIndirectOwnership><value>D</value></directOrIndirectOwnership>
            </ownershipNature>
        </nonDerivativeHolding>
    </nonDerivativeTable>
    <ownerSignature>
        <signatureName>/s/ Richard Roe</signatureName>
        <signatureDate>2023-01-17</signatureDate>
    </ownerSignature>
</ownershipDocument>
</XML>`

	got, err := extractOwnershipData(content, "3")
	if err != nil {
		t.Fatalf("extractOwnershipData: %v", err)
	}
	data, ok := got.(*Form3Data)
	if !ok {
		t.Fatalf("payload type = %T, want *Form3Data", got)
	}

	if data.DocumentInfo.DocumentType != "3" || data.DocumentInfo.PeriodOfReport != "2023-01-15" {
		t.Errorf("document info = %+v", data.DocumentInfo)
	}
	if data.IssuerInfo.TradingSymbol != "AMZN" {
		t.Errorf("issuer = %+v", data.IssuerInfo)
	}
	if data.ReportingOwner.ID.Name != "ROE RICHARD" {
		t.Errorf("reporting owner = %+v", data.ReportingOwner.ID)
	}
	if data.ReportingOwner.Relationship.IsDirector != "1" {
		t.Errorf("relationship = %+v", data.ReportingOwner.Relationship)
	}
	if len(data.NonDerivativeSecurities) != 1 {
		t.Fatalf("non-derivative securities = %d, want 1", len(data.NonDerivativeSecurities))
	}
	sec := data.NonDerivativeSecurities[0]
	if sec.SecurityTitle != "Common Stock" || sec.SharesOwned != "250" || sec.OwnershipNature != "D" {
		t.Errorf("holding = %+v", sec)
	}
	if data.OwnerSignature.Name != "/s/ Richard Roe" {
		t.Errorf("owner signature = %+v", data.OwnerSignature)
	}
}

func TestExtractOwnershipDataSchedule13(t *testing.T) {
	content := `<XML>
<?xml version="1.0"?>
<edgarSubmission>
    <subjectCompany>
        <companyName>Example Corp</companyName>
        <cik>0000123456</cik>
        <tradingSymbol>EXM</tradingSymbol>
    </subjectCompany>
    <reportingOwner>
        <reportingOwnerId>
            <rptOwnerCik>0000999999</rptOwnerCik>
            <rptOwnerName>Big Fund LP</rptOwnerName>
        </reportingOwnerId>
        <reportingOwnerAddress>
            <rptOwnerStreet1>1 Fund Street</rptOwnerStreet1>
            <rptOwnerCity>New York</rptOwnerCity>
            <rptOwnerState>NY</rptOwnerState>
            <rptOwnerZipCode>10001</rptOwnerZipCode>
        </reportingOwnerAddress>
    </reportingOwner>
    <holdings>
        <sharesHeld>1200000</sharesHeld>
        <percentClass>5.4</percentClass>
        <investmentDiscretion>SOLE</investmentDiscretion>
    </holdings>
</edgarSubmission>
</XML>`

	got, err := extractOwnershipData(content, "SC13G")
	if err != nil {
		t.Fatalf("extractOwnershipData: %v", err)
	}
	data, ok := got.(*Schedule13Data)
	if !ok {
		t.Fatalf("payload type = %T, want *Schedule13Data", got)
	}

	if data.SubjectCompany.Name != "Example Corp" || data.SubjectCompany.CIK != "0000123456" {
		t.Errorf("subject company = %+v", data.SubjectCompany)
	}
	if len(data.ReportingOwners) != 1 {
		t.Fatalf("reporting owners = %d, want 1", len(data.ReportingOwners))
	}
	owner := data.ReportingOwners[0]
	if owner.Name != "Big Fund LP" || owner.Address.Zip != "10001" {
		t.Errorf("owner = %+v", owner)
	}
	if data.Holdings.SharesHeld != "1200000" || data.Holdings.PercentClass != "5.4" {
		t.Errorf("holdings = %+v", data.Holdings)
	}
}

func TestExtractOwnershipDataNoXML(t *testing.T) {
	_, err := extractOwnershipData("no embedded block here", "4")
	if !errors.Is(err, ErrNoSectionsExtracted) {
		t.Errorf("err = %v, want ErrNoSectionsExtracted", err)
	}
}
