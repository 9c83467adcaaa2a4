package extract

// amountPrompt asks for the single final payable amount as a bare number.
// The response is expected to be a few characters, so callers cap output
// length tightly and keep temperature low.
const amountPrompt = `You are a precise financial extraction assistant.

The following text was extracted from a payslip, invoice, or receipt.

Return ONLY the final payable amount.
Priority labels:
1. Net Salary Payable / Net Salary / Net Pay
2. Total Earnings / Total Earnings (A)
3. Grand Total / Amount Paid / Total Amount / Total

Rules:
- Output ONLY the number (no commas, no currency symbol, no words).
- Keep decimals if present.
- If multiple candidates are visible, prefer the net/final figure.
- If nothing matches, output EXACTLY: NONE

TEXT:
"""%s"""`

// classificationPrompt asks for a strict JSON array of transactions, one per
// recognizable statement line.
const classificationPrompt = `You are a personal finance assistant.

Classify each line of the following text as a transaction with these fields:
- "date": string, ISO format "YYYY-MM-DD"
- "description": string
- "amount": number
- "type": "Credit" or "Debit"
- "classifiedAs": "Income" or "Expense"

Rules:
- If a line does not contain a transaction, skip it.
- Use today's date (%s) when a line has no date.
- Return ONLY valid raw JSON.
- Do NOT wrap the response in code fences.
- Do NOT use ` + "```json" + ` or any Markdown.
- Output must begin with "[" and end with "]".

TEXT:
"""%s"""`
