// Package sidecar writes the per-asset metadata files an export can produce
// alongside the copied media: XMP (with MWG/Microsoft-Photo face regions),
// JSON, and template-rendered plain text (§4.H).
package sidecar

import (
	"fmt"
	"strings"

	"github.com/mdriscoll/photoslib/internal/model"
)

// xmpTemplate is the RDF/XML skeleton every XMP sidecar fills in. Face
// regions use both the MWG (Metadata Working Group) and Microsoft Photo
// namespaces since different downstream tools read one or the other.
const xmpTemplate = `<?xpacket begin="` + string(rune(0xFEFF)) + `" id="W5M0MpCehiHzreSzNTczkc9d"?>
<x:xmpmeta xmlns:x="adobe:ns:meta/">
 <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description rdf:about=""
    xmlns:dc="http://purl.org/dc/elements/1.1/"
    xmlns:mwg-rs="http://www.metadataworkinggroup.com/schemas/regions/"
    xmlns:stArea="http://ns.adobe.com/xmp/sType/Area#"
    xmlns:MP="http://ns.microsoft.com/photo/1.2/"
    xmlns:MPRI="http://ns.microsoft.com/photo/1.2/t/RegionInfo#"
    xmlns:MPReg="http://ns.microsoft.com/photo/1.2/t/Region#">
   <dc:title>%s</dc:title>
   <dc:description>%s</dc:description>
   <dc:subject>
    <rdf:Bag>
%s
    </rdf:Bag>
   </dc:subject>
%s
  </rdf:Description>
 </rdf:RDF>
</x:xmpmeta>
<?xpacket end="w"?>
`

// RenderXMP builds the XMP sidecar document for one asset. personName maps
// each face's person ID to a display name; the caller (the export engine,
// which owns the Library) supplies it.
func RenderXMP(a *model.Asset, faces []*model.Face, personName func(id string) string) string {
	var keywords strings.Builder
	for _, kw := range a.Keywords {
		fmt.Fprintf(&keywords, "     <rdf:li>%s</rdf:li>\n", xmlEscape(kw))
	}

	regions := renderFaceRegions(faces, personName)

	return fmt.Sprintf(xmpTemplate,
		xmlEscape(a.Title), xmlEscape(a.Description), keywords.String(), regions)
}

// renderFaceRegions emits the MWG region-list block followed by the
// Microsoft Photo region-info block. Coordinates are normalized to [0,1]
// and rendered with six decimal places, matching the precision Photos
// itself writes (§4.H.2); MWG areas are centered on the face, Microsoft
// Photo rectangles start at its top-left corner.
func renderFaceRegions(faces []*model.Face, personName func(id string) string) string {
	if len(faces) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("   <mwg-rs:Regions>\n    <mwg-rs:RegionList>\n     <rdf:Bag>\n")
	for _, f := range faces {
		name := personName(f.PersonID)
		fmt.Fprintf(&b, `      <rdf:li rdf:parseType="Resource">
       <mwg-rs:Name>%s</mwg-rs:Name>
       <mwg-rs:Type>Face</mwg-rs:Type>
       <mwg-rs:Area rdf:parseType="Resource"
         stArea:x="%s" stArea:y="%s"
         stArea:w="%s" stArea:h="%s"
         stArea:unit="normalized"/>
      </rdf:li>
`, xmlEscape(name), fixed6(f.Region.CenterX), fixed6(f.Region.CenterY), fixed6(f.Region.Width), fixed6(f.Region.Height))
	}
	b.WriteString("     </rdf:Bag>\n    </mwg-rs:RegionList>\n   </mwg-rs:Regions>\n")
	b.WriteString("   <MP:RegionInfo rdf:parseType=\"Resource\">\n    <MPRI:Regions>\n     <rdf:Bag>\n")
	for _, f := range faces {
		fmt.Fprintf(&b, "      <rdf:li MPReg:PersonDisplayName=\"%s\" MPReg:Rectangle=\"%s, %s, %s, %s\"/>\n",
			xmlEscape(personName(f.PersonID)), fixed6(f.Region.X), fixed6(f.Region.Y), fixed6(f.Region.Width), fixed6(f.Region.Height))
	}
	b.WriteString("     </rdf:Bag>\n    </MPRI:Regions>\n   </MP:RegionInfo>\n")
	return b.String()
}

func fixed6(f float64) string {
	return fmt.Sprintf("%.6f", f)
}

func xmlEscape(s string) string {
	replacer := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return replacer.Replace(s)
}
