package ai

// KnownDepots are destinations that are reported verbatim whenever the address mentions them
var KnownDepots = []string{
	"ARNDELL", "BANYO", "SALISBURY", "DERRIMUT", "MOONAH",
	"JANDAKOT", "GEPPS CROSS", "BARON", "SHEPPARTON", "EE-FIT", "CANBERRA",
}

const ManifestPrompt = `
You are reading a delivery manifest PDF for an insulation warehouse dispatch board.
Extract the order it describes and return ONLY a JSON object, nothing else.

### OUTPUT FORMAT
{
  "destination": "delivery suburb in CAPITALS",
  "manifestNumber": "delivery/manifest number from the document header",
  "transportCompany": "company name printed next to the word CARRIER",
  "trailerType": "from the VEHICLE section, e.g. B_DOUBLE, TRUCK, SEMI",
  "trailerSize": "from the VEHICLE section, e.g. 173M3, 120M3",
  "time": "HH:MM, 24-hour",
  "products": [
    {
      "productCode": "code starting with 10, 20 or 40",
      "packsOrdered": "whole number of packs",
      "description": "product description as printed, including any code in parentheses"
    }
  ]
}

### RULES
1. DESTINATION: if the delivery address contains one of ARNDELL, BANYO, SALISBURY, DERRIMUT, MOONAH,
   JANDAKOT, GEPPS CROSS, BARON, SHEPPARTON, EE-FIT, CANBERRA use that exact name, otherwise the suburb in CAPITALS.
2. MANIFEST NUMBER: labelled "Delivery Number", "Manifest #" or similar.
3. TRANSPORT COMPANY: the name near "CARRIER", with normal spacing. Omit when absent.
4. TRAILER: look for VEHICLE, TRUCK or TRAILER sections anywhere in the document
   (types like B_DOUBLE, B-DOUBLE, TRUCK, SEMI, RIGID, PANTECH; sizes like 173M3, 85M3). Omit when absent.
5. TIME: usually top right of the first page. Use "00:00" if no time is printed.
6. PRODUCTS: every line item whose code starts with 10, 20 or 40, with its pack quantity. Never return an empty list.
7. DESCRIPTION: describe type (batts, rolls, boards), dimensions and any other identifying detail.
`
